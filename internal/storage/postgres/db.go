package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects with lib/pq and layers gorm on the same pool, so the raw SQL
// statement store and the gorm user directory share connections.
func Open(ctx context.Context, dsn string) (*sql.DB, *gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("open gorm: %w", err)
	}
	return sqlDB, gormDB, nil
}

// Migrate creates or updates the users and statements tables. Models are
// migrated one by one so a failure names the table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := db.AutoMigrate(&models.Statement{}); err != nil {
		return fmt.Errorf("migrate statements: %w", err)
	}
	if err := ensureForeignKey(db, "fk_statements_user", "user_id"); err != nil {
		return err
	}
	if err := ensureForeignKey(db, "fk_statements_sender", "sender_id"); err != nil {
		return err
	}
	slog.Info("database migrated")
	return nil
}

// ensureForeignKey links statements.<column> to users(id) unless the constraint exists
func ensureForeignKey(db *gorm.DB, name, column string) error {
	var n int64
	checkSQL := `SELECT count(*) FROM pg_constraint ct
		JOIN pg_class rel ON rel.oid = ct.conrelid
		WHERE rel.relname = 'statements' AND ct.conname = ?`
	if err := db.Raw(checkSQL, name).Scan(&n).Error; err != nil {
		return fmt.Errorf("check constraint %s: %w", name, err)
	}
	if n > 0 {
		return nil
	}
	stmt := fmt.Sprintf(`ALTER TABLE statements ADD CONSTRAINT %s
		FOREIGN KEY (%s) REFERENCES users(id) ON UPDATE CASCADE ON DELETE RESTRICT`, name, column)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("add constraint %s: %w", name, err)
	}
	return nil
}

// isUniqueViolation reports a 23505 error from lib/pq
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
