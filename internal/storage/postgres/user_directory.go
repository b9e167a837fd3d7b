package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/statement-ledger-api/internal/apperrors"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
	"gorm.io/gorm"
)

// PostgresUserDirectory stores users through gorm
type PostgresUserDirectory struct {
	db *gorm.DB
}

func NewPostgresUserDirectory(db *gorm.DB) *PostgresUserDirectory {
	return &PostgresUserDirectory{db: db}
}

func (d *PostgresUserDirectory) FindByID(ctx context.Context, id string) (models.User, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, false, nil
	}
	return d.first(ctx, "id = ?", id)
}

func (d *PostgresUserDirectory) FindByEmail(ctx context.Context, email string) (models.User, bool, error) {
	return d.first(ctx, "email = ?", strings.ToLower(email))
}

func (d *PostgresUserDirectory) first(ctx context.Context, cond string, arg any) (models.User, bool, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("query users: %w", err)
	}
	return user, true, nil
}

func (d *PostgresUserDirectory) Create(ctx context.Context, user models.User) (models.User, error) {
	if err := d.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) { // race after the service's pre-check
			return models.User{}, apperrors.Conflict("user already exists")
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

var _ interfaces.UserDirectory = (*PostgresUserDirectory)(nil)
