// Package cache decorates the user directory with a redis read-through cache.
// Users are immutable apart from profile fields, so entries expire instead of
// being invalidated.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
)

// cachedUser mirrors models.User including the hash, which models.User keeps out of JSON
type cachedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserDirectory struct {
	next   interfaces.UserDirectory
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewUserDirectory(next interfaces.UserDirectory, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *UserDirectory {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserDirectory{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func userKey(id string) string {
	return fmt.Sprintf("user:%s:data", id)
}

// FindByID serves from redis when possible. Redis failures fall back to the
// underlying directory and are only logged.
func (d *UserDirectory) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	key := userKey(id)
	data, err := d.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cu cachedUser
		if json.Unmarshal([]byte(data), &cu) == nil {
			return models.User(cu), true, nil
		}
		d.logger.Warn("failed to unmarshal cached user", "user_id", id)
	case !errors.Is(err, redis.Nil):
		d.logger.Error("redis GET failed", "user_id", id, "error", err)
	}

	user, ok, err := d.next.FindByID(ctx, id)
	if err != nil || !ok {
		return user, ok, err
	}
	d.store(ctx, user)
	return user, true, nil
}

func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return d.next.FindByEmail(ctx, email)
}

func (d *UserDirectory) Create(ctx context.Context, user models.User) (models.User, error) {
	created, err := d.next.Create(ctx, user)
	if err != nil {
		return created, err
	}
	d.store(ctx, created)
	return created, nil
}

func (d *UserDirectory) store(ctx context.Context, user models.User) {
	payload, err := json.Marshal(cachedUser(user))
	if err != nil {
		d.logger.Error("failed to marshal user for caching", "user_id", user.ID, "error", err)
		return
	}
	if err := d.rdb.Set(ctx, userKey(user.ID), payload, d.ttl).Err(); err != nil {
		d.logger.Error("redis SET failed", "user_id", user.ID, "error", err)
	}
}

var _ interfaces.UserDirectory = (*UserDirectory)(nil)
