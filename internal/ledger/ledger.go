package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/statement-ledger-api/internal/apperrors"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models/events"
	"github.com/shopspring/decimal"
)

const unknownSender = "unknown sender"

// amounts are stored as numeric(14,2)
var maxAmount = decimal.New(1, 12)

// Ledger runs the statement use cases on top of a statement store and a user directory
type Ledger struct {
	statements interfaces.StatementStore
	users      interfaces.UserDirectory
	publisher  interfaces.EventPublisher // optional
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewLedger wires the use cases to their collaborators. publisher may be nil.
func NewLedger(statements interfaces.StatementStore, users interfaces.UserDirectory, publisher interfaces.EventPublisher, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		statements: statements,
		users:      users,
		publisher:  publisher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

// CreateStatementInput is a deposit or withdraw request
type CreateStatementInput struct {
	UserID      string
	Type        models.OperationType
	Amount      decimal.Decimal
	Description string
}

// TransferInput moves Amount from UserFrom to UserTo
type TransferInput struct {
	UserFrom    string
	UserTo      string
	Amount      decimal.Decimal
	Description string
}

// Balance is a user's statement log together with its folded total
type Balance struct {
	Statements []models.Statement `json:"statement"`
	Balance    decimal.Decimal    `json:"balance"`
}

func (l *Ledger) newStatement(userID string, typ models.OperationType, amount decimal.Decimal, description string) models.Statement {
	now := l.now()
	return models.Statement{
		ID:          l.newID(),
		UserID:      userID,
		Type:        typ,
		Amount:      amount,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (l *Ledger) requireUser(ctx context.Context, userID, msg string) (models.User, error) {
	user, ok, err := l.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("find user %s: %w", userID, err)
	}
	if !ok {
		return models.User{}, apperrors.NotFound(msg)
	}
	return user, nil
}

// CreateStatement records a deposit or a withdraw. Withdrawals are checked
// against the balance under the user's debit lock.
func (l *Ledger) CreateStatement(ctx context.Context, in CreateStatementInput) (models.Statement, error) {
	if _, err := l.requireUser(ctx, in.UserID, "user not found"); err != nil {
		return models.Statement{}, err
	}
	if in.Type != models.OperationDeposit && in.Type != models.OperationWithdraw {
		return models.Statement{}, apperrors.InvalidOperation(fmt.Sprintf("unsupported operation type %q", in.Type))
	}
	if err := validateAmount(in.Amount); err != nil {
		return models.Statement{}, err
	}

	st := l.newStatement(in.UserID, in.Type, in.Amount, in.Description)

	if in.Type == models.OperationDeposit {
		created, err := l.statements.Create(ctx, st)
		if err != nil {
			return models.Statement{}, fmt.Errorf("create deposit: %w", err)
		}
		l.publishCreated(ctx, created)
		return created, nil
	}

	var created models.Statement
	err := l.statements.WithinUserTx(ctx, in.UserID, func(tx interfaces.StatementTx) error {
		if err := checkFunds(ctx, tx, in.UserID, in.Amount); err != nil {
			return err
		}
		var err error
		created, err = tx.Create(ctx, st)
		return err
	})
	if err != nil {
		return models.Statement{}, wrapInfra("create withdraw", err)
	}
	l.publishCreated(ctx, created)
	return created, nil
}

// Transfer writes the sender's withdraw row and the receiver's transfer row in
// one store transaction.
func (l *Ledger) Transfer(ctx context.Context, in TransferInput) error {
	if err := validateAmount(in.Amount); err != nil {
		return err
	}
	// self-transfers are refused; a matching withdraw/credit pair would be a no-op
	if in.UserFrom == in.UserTo {
		return apperrors.InvalidOperation("cannot transfer to the same user")
	}
	if _, err := l.requireUser(ctx, in.UserTo, "user to does not exist"); err != nil {
		return err
	}
	if _, err := l.requireUser(ctx, in.UserFrom, "user not found"); err != nil {
		return err
	}

	var withdraw, receive models.Statement
	err := l.statements.WithinUserTx(ctx, in.UserFrom, func(tx interfaces.StatementTx) error {
		if err := checkFunds(ctx, tx, in.UserFrom, in.Amount); err != nil {
			return err
		}

		var err error
		withdraw, err = tx.Create(ctx, l.newStatement(in.UserFrom, models.OperationWithdraw, in.Amount, in.Description))
		if err != nil {
			return err
		}

		senderName := l.senderName(ctx, in.UserFrom)
		rv := l.newStatement(in.UserTo, models.OperationTransfer, in.Amount, fmt.Sprintf("Transfer received from %s", senderName))
		sender := in.UserFrom
		rv.SenderID = &sender
		receive, err = tx.Create(ctx, rv)
		return err
	})
	if err != nil {
		return wrapInfra("transfer", err)
	}

	l.logger.Info("transfer recorded",
		"from_user", in.UserFrom,
		"to_user", in.UserTo,
		"amount", in.Amount.String(),
		"withdraw_id", withdraw.ID,
		"receive_id", receive.ID,
	)

	l.publishCreated(ctx, withdraw)
	l.publishCreated(ctx, receive)
	l.publish(ctx, events.TopicTransferCompleted, events.TransferCompleted{
		FromUser:   in.UserFrom,
		ToUser:     in.UserTo,
		Amount:     in.Amount,
		WithdrawID: withdraw.ID,
		ReceiveID:  receive.ID,
		OccurredAt: receive.CreatedAt,
	})
	return nil
}

// senderName never fails the transfer; the description falls back to a placeholder
func (l *Ledger) senderName(ctx context.Context, userID string) string {
	user, ok, err := l.users.FindByID(ctx, userID)
	if err != nil {
		l.logger.Warn("sender lookup failed", "user_id", userID, "error", err)
		return unknownSender
	}
	if !ok || user.Name == "" {
		return unknownSender
	}
	return user.Name
}

// GetBalance returns the user's statements in creation order and their sum
func (l *Ledger) GetBalance(ctx context.Context, userID string) (Balance, error) {
	if _, err := l.requireUser(ctx, userID, "user not found"); err != nil {
		return Balance{}, err
	}

	statements, err := l.statements.FindByUser(ctx, userID)
	if err != nil {
		return Balance{}, fmt.Errorf("list statements: %w", err)
	}
	balance, err := models.Balance(statements)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Statements: statements, Balance: balance}, nil
}

// GetOperation looks up one of the user's statements. A statement owned by
// another user is reported as not found.
func (l *Ledger) GetOperation(ctx context.Context, userID, statementID string) (models.Statement, error) {
	if _, err := l.requireUser(ctx, userID, "user not found"); err != nil {
		return models.Statement{}, err
	}

	st, ok, err := l.statements.FindByID(ctx, statementID)
	if err != nil {
		return models.Statement{}, fmt.Errorf("find statement %s: %w", statementID, err)
	}
	if !ok || st.UserID != userID {
		return models.Statement{}, apperrors.NotFound("statement not found")
	}
	return st, nil
}

// validateAmount accepts positive amounts with at most two decimal places
// that fit the statements.amount column
func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.InvalidAmount("amount must be greater than zero")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return apperrors.InvalidAmount("amount must have at most two decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return apperrors.InvalidAmount("amount is too large")
	}
	return nil
}

// checkFunds rejects amount > balance; amount == balance is allowed
func checkFunds(ctx context.Context, tx interfaces.StatementTx, userID string, amount decimal.Decimal) error {
	balance, err := tx.GetUserBalance(ctx, userID)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}
	if amount.GreaterThan(balance) {
		return apperrors.InsufficientFunds()
	}
	return nil
}

// wrapInfra leaves application errors untouched so their message reaches the client
func wrapInfra(op string, err error) error {
	if apperrors.StatusOf(err) < 500 {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (l *Ledger) publishCreated(ctx context.Context, st models.Statement) {
	l.publish(ctx, events.TopicStatementCreated, events.StatementCreated{
		StatementID: st.ID,
		UserID:      st.UserID,
		Type:        string(st.Type),
		Amount:      st.Amount,
		OccurredAt:  st.CreatedAt,
	})
}

// publish runs after commit, so a delivery failure is logged and never undoes the write
func (l *Ledger) publish(ctx context.Context, topic string, event any) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, topic, event); err != nil {
		l.logger.Error("publish event failed", "topic", topic, "error", err)
	}
}
