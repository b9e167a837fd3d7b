package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/sheikh-saqib/statement-ledger-api/internal/apperrors"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
)

// MemoryUserDirectory keeps users in maps keyed by id and lowercased email
type MemoryUserDirectory struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string // email -> id
}

func NewMemoryUserDirectory() *MemoryUserDirectory {
	return &MemoryUserDirectory{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (d *MemoryUserDirectory) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byID[id]
	return u, ok, nil
}

func (d *MemoryUserDirectory) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return models.User{}, false, nil
	}
	return d.byID[id], true, nil
}

func (d *MemoryUserDirectory) Create(ctx context.Context, user models.User) (models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, taken := d.byEmail[key]; taken {
		return models.User{}, apperrors.Conflict("user already exists")
	}
	d.byID[user.ID] = user
	d.byEmail[key] = user.ID
	return user, nil
}

var _ interfaces.UserDirectory = (*MemoryUserDirectory)(nil)
