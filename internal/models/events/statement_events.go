package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topic suffixes; the publisher prefixes them with the configured namespace.
const (
	TopicStatementCreated  = "statement_created"
	TopicTransferCompleted = "transfer_completed"
)

// StatementCreated is emitted once per committed statement row
type StatementCreated struct {
	StatementID string          `json:"statement_id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// TransferCompleted is emitted after both rows of a transfer commit
type TransferCompleted struct {
	FromUser   string          `json:"from_user"`
	ToUser     string          `json:"to_user"`
	Amount     decimal.Decimal `json:"amount"`
	WithdrawID string          `json:"withdraw_id"`
	ReceiveID  string          `json:"receive_id"`
	OccurredAt time.Time       `json:"occurred_at"`
}
