package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sheikh-saqib/statement-ledger-api/internal/apperrors"
	"github.com/sheikh-saqib/statement-ledger-api/internal/auth"
	interfaces "github.com/sheikh-saqib/statement-ledger-api/internal/interfaces"
	"github.com/sheikh-saqib/statement-ledger-api/internal/models"
)

// Service covers registration, sessions and profile lookup
type Service struct {
	users  interfaces.UserDirectory
	hasher auth.PasswordHasher
	tokens *auth.TokenIssuer
}

func NewService(users interfaces.UserDirectory, hasher auth.PasswordHasher, tokens *auth.TokenIssuer) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
}

// Session is returned by Authenticate
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

func (s *Service) Create(ctx context.Context, in CreateUserInput) (models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return models.User{}, apperrors.InvalidInput("name, email and password are required")
	}

	// pre-check; the directory still reports a race as a conflict
	if _, exists, err := s.users.FindByEmail(ctx, email); err != nil {
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	} else if exists {
		return models.User{}, apperrors.Conflict("user already exists")
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	return s.users.Create(ctx, models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Authenticate checks credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	user, ok, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return Session{}, fmt.Errorf("find user by email: %w", err)
	}
	if !ok || !s.hasher.Compare(user.Password, password) {
		return Session{}, apperrors.Unauthorized("incorrect email or password")
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (models.User, error) {
	user, ok, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("find user %s: %w", userID, err)
	}
	if !ok {
		return models.User{}, apperrors.NotFound("user not found")
	}
	return user, nil
}
