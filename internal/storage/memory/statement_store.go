package memory

import (
	"context"
	"sync"

	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryStatementStore is an in-memory implementation of interfaces.StatementStore.
// Statements live in a slice in insertion order; byID indexes into it.
type MemoryStatementStore struct {
	mu         sync.RWMutex       // protects statements and byID
	statements []models.Statement // append-only log
	byID       map[string]int

	muMap map[string]*sync.Mutex // per-user debit locks
	mapMu sync.Mutex             // protects muMap itself
}

// NewMemoryStatementStore creates an empty store
func NewMemoryStatementStore() *MemoryStatementStore {
	return &MemoryStatementStore{
		statements: make([]models.Statement, 0),
		byID:       make(map[string]int),
		muMap:      make(map[string]*sync.Mutex),
	}
}

func (m *MemoryStatementStore) getUserLock(userID string) *sync.Mutex {
	m.mapMu.Lock()
	defer m.mapMu.Unlock()

	if _, exists := m.muMap[userID]; !exists {
		m.muMap[userID] = &sync.Mutex{}
	}
	return m.muMap[userID]
}

// Create appends a statement to the log
func (m *MemoryStatementStore) Create(ctx context.Context, statement models.Statement) (models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return models.Statement{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendLocked(statement)
	return statement, nil
}

func (m *MemoryStatementStore) appendLocked(statement models.Statement) {
	m.byID[statement.ID] = len(m.statements)
	m.statements = append(m.statements, statement)
}

func (m *MemoryStatementStore) FindByID(ctx context.Context, id string) (models.Statement, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byID[id]
	if !ok {
		return models.Statement{}, false, nil
	}
	return m.statements[idx], true, nil
}

// FindByUser returns a copy of the user's statements so callers can't modify internal state
func (m *MemoryStatementStore) FindByUser(ctx context.Context, userID string) ([]models.Statement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Statement, 0)
	for _, st := range m.statements {
		if st.UserID == userID {
			result = append(result, st)
		}
	}
	return result, nil
}

func (m *MemoryStatementStore) GetUserBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	statements, err := m.FindByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return models.Balance(statements)
}

// WithinUserTx serializes debits on userID. Writes made through tx are staged
// and appended in one step once fn succeeds and ctx is still live.
func (m *MemoryStatementStore) WithinUserTx(ctx context.Context, userID string, fn func(tx interfaces.StatementTx) error) error {
	lock := m.getUserLock(userID)
	lock.Lock()
	defer lock.Unlock()

	tx := &memoryTx{store: m}
	if err := fn(tx); err != nil {
		return err
	}
	// a cancelled caller must not observe a commit it gave up on
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range tx.pending {
		m.appendLocked(st)
	}
	return nil
}

// memoryTx buffers statements until WithinUserTx commits them
type memoryTx struct {
	store   *MemoryStatementStore
	pending []models.Statement
}

func (t *memoryTx) Create(ctx context.Context, statement models.Statement) (models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return models.Statement{}, err
	}
	t.pending = append(t.pending, statement)
	return statement, nil
}

// GetUserBalance sees committed rows plus the ones staged in this tx
func (t *memoryTx) GetUserBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	committed, err := t.store.GetUserBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	var staged []models.Statement
	for _, st := range t.pending {
		if st.UserID == userID {
			staged = append(staged, st)
		}
	}
	delta, err := models.Balance(staged)
	if err != nil {
		return decimal.Zero, err
	}
	return committed.Add(delta), nil
}

// Compile-time check: ensure MemoryStatementStore implements StatementStore
var _ interfaces.StatementStore = (*MemoryStatementStore)(nil)
