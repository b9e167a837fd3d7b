package interfaces

import (
	"context"

	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"github.com/shopspring/decimal"
)

// StatementStore is the append-only statement log
type StatementStore interface {
	Create(ctx context.Context, statement models.Statement) (models.Statement, error)
	FindByID(ctx context.Context, id string) (models.Statement, bool, error)
	// FindByUser returns the user's statements in creation order
	FindByUser(ctx context.Context, userID string) ([]models.Statement, error)
	GetUserBalance(ctx context.Context, userID string) (decimal.Decimal, error)

	// WithinUserTx runs fn while holding userID's debit lock. Statements created
	// through tx become visible together when fn returns nil, and not at all otherwise.
	WithinUserTx(ctx context.Context, userID string, fn func(tx StatementTx) error) error
}

// StatementTx is the view of the store inside WithinUserTx
type StatementTx interface {
	Create(ctx context.Context, statement models.Statement) (models.Statement, error)
	GetUserBalance(ctx context.Context, userID string) (decimal.Decimal, error)
}
