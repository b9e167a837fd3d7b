package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"github.com/shopspring/decimal"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresStatementStore struct {
	db *sql.DB
}

func NewPostgresStatementStore(db *sql.DB) *PostgresStatementStore {
	return &PostgresStatementStore{
		db: db,
	}
}

const statementColumns = `id, user_id, sender_id, type, amount, description, created_at, updated_at`

func insertStatement(ctx context.Context, q queryer, st models.Statement) (models.Statement, error) {
	const query = `INSERT INTO statements (` + statementColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err := q.ExecContext(ctx, query, st.ID, st.UserID, st.SenderID, string(st.Type), st.Amount, st.Description, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return models.Statement{}, fmt.Errorf("insert statement: %w", err)
	}
	return st, nil
}

func userBalance(ctx context.Context, q queryer, userID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(CASE WHEN type = 'withdraw' THEN -amount ELSE amount END), 0)
	FROM statements WHERE user_id = $1`

	var balance decimal.Decimal
	if err := q.QueryRowContext(ctx, query, userID).Scan(&balance); err != nil {
		return decimal.Zero, fmt.Errorf("sum statements: %w", err)
	}
	return balance, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatement(row rowScanner) (models.Statement, error) {
	var (
		st     models.Statement
		sender sql.NullString
		typ    string
	)
	if err := row.Scan(&st.ID, &st.UserID, &sender, &typ, &st.Amount, &st.Description, &st.CreatedAt, &st.UpdatedAt); err != nil {
		return models.Statement{}, err
	}
	st.Type = models.OperationType(typ)
	if sender.Valid {
		st.SenderID = &sender.String
	}
	return st, nil
}

func (p *PostgresStatementStore) Create(ctx context.Context, st models.Statement) (models.Statement, error) {
	return insertStatement(ctx, p.db, st)
}

func (p *PostgresStatementStore) FindByID(ctx context.Context, id string) (models.Statement, bool, error) {
	// ids are uuid columns; anything else cannot match
	if _, err := uuid.Parse(id); err != nil {
		return models.Statement{}, false, nil
	}
	const query = `SELECT ` + statementColumns + ` FROM statements WHERE id = $1`

	st, err := scanStatement(p.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return models.Statement{}, false, nil
	}
	if err != nil {
		return models.Statement{}, false, fmt.Errorf("find statement: %w", err)
	}
	return st, true, nil
}

func (p *PostgresStatementStore) FindByUser(ctx context.Context, userID string) ([]models.Statement, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []models.Statement{}, nil
	}
	const query = `SELECT ` + statementColumns + ` FROM statements
	WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list statements: %w", err)
	}
	defer rows.Close()

	statements := make([]models.Statement, 0)
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan statement: %w", err)
		}
		statements = append(statements, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return statements, nil
}

func (p *PostgresStatementStore) GetUserBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return decimal.Zero, nil
	}
	return userBalance(ctx, p.db, userID)
}

// WithinUserTx takes a transaction-scoped advisory lock on userID so debits on
// one account are serialized across processes. fn's writes share the tx.
func (p *PostgresStatementStore) WithinUserTx(ctx context.Context, userID string, fn func(tx interfaces.StatementTx) error) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if _, err = dbTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return fmt.Errorf("lock user %s: %w", userID, err)
	}

	if err = fn(&postgresTx{q: dbTx}); err != nil {
		return err
	}

	if err = dbTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

type postgresTx struct {
	q queryer
}

func (t *postgresTx) Create(ctx context.Context, st models.Statement) (models.Statement, error) {
	return insertStatement(ctx, t.q, st)
}

func (t *postgresTx) GetUserBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	return userBalance(ctx, t.q, userID)
}

var _ interfaces.StatementStore = (*PostgresStatementStore)(nil)
var _ interfaces.StatementTx = (*postgresTx)(nil)
