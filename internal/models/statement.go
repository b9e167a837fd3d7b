package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OperationType is the kind of a statement row
type OperationType string

const (
	OperationDeposit  OperationType = "deposit"
	OperationWithdraw OperationType = "withdraw"
	OperationTransfer OperationType = "transfer" // receiving side of a transfer
)

// Statement is one immutable ledger entry owned by a user.
// The gorm tags only drive schema migration; reads and writes go through database/sql.
type Statement struct {
	ID          string          `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      string          `json:"user_id" gorm:"type:uuid;index;not null"`
	SenderID    *string         `json:"sender_id,omitempty" gorm:"type:uuid"` // set on transfer-receive rows only
	Type        OperationType   `json:"type" gorm:"type:varchar(16);not null"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	Description string          `json:"description" gorm:"size:255;not null"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index;not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}

// SignedAmount returns the effect of the statement on its owner's balance
func (s Statement) SignedAmount() (decimal.Decimal, error) {
	switch s.Type {
	case OperationDeposit, OperationTransfer:
		return s.Amount, nil
	case OperationWithdraw:
		return s.Amount.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown operation type: %s", s.Type)
	}
}

// Balance folds statements into a running balance.
// Rows with an unknown type are an error rather than silently skipped.
func Balance(statements []Statement) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, st := range statements {
		signed, err := st.SignedAmount()
		if err != nil {
			return decimal.Zero, fmt.Errorf("statement %s: %w", st.ID, err)
		}
		balance = balance.Add(signed)
	}
	return balance, nil
}
