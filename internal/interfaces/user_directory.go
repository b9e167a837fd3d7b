package interfaces

import (
	"context"

	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
)

// UserDirectory resolves account holders
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	FindByEmail(ctx context.Context, email string) (models.User, bool, error)
	// Create fails with an apperrors.ErrConflict error when the email is taken
	Create(ctx context.Context, user models.User) (models.User, error)
}
