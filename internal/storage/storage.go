package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/sheikh-saqib/statement-ledger-api/internal/config"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/storage/cache"
	"github.com/sheikh-saqib/statement-ledger-api/internal/storage/memory"
	"github.com/sheikh-saqib/statement-ledger-api/internal/storage/postgres"
)

// Stores bundles the storage implementations selected by configuration
type Stores struct {
	Statements interfaces.StatementStore
	Users      interfaces.UserDirectory

	sqlDB *sql.DB
	rdb   *redis.Client
}

// New picks postgres when DB_DSN is set and the memory stores otherwise.
// With REDIS_ADDR the user directory is wrapped in the redis cache; an
// unreachable redis disables caching rather than failing startup.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Stores, error) {
	s := &Stores{}

	if cfg.DatabaseDSN == "" {
		logger.Warn("DB_DSN is not set, using in-memory stores")
		s.Statements = memory.NewMemoryStatementStore()
		s.Users = memory.NewMemoryUserDirectory()
	} else {
		sqlDB, gormDB, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		s.sqlDB = sqlDB
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, gormDB); err != nil {
				sqlDB.Close()
				return nil, err
			}
		}
		s.Statements = postgres.NewPostgresStatementStore(sqlDB)
		s.Users = postgres.NewPostgresUserDirectory(gormDB)
		logger.Info("connected to postgres")
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable, user cache disabled", "addr", cfg.RedisAddr, "error", err)
			rdb.Close()
		} else {
			s.rdb = rdb
			s.Users = cache.NewUserDirectory(s.Users, rdb, cfg.UserCacheTTL, logger)
			logger.Info("user cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.UserCacheTTL.String())
		}
	}
	return s, nil
}

// Close releases the database pool and the redis client, if any
func (s *Stores) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
	}
	if s.sqlDB != nil {
		if err := s.sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close postgres: %w", err)
		}
	}
	return firstErr
}
