package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wordpath/wordpath-api/internal/domain"
	"github.com/wordpath/wordpath-api/internal/platform/logger"
	"github.com/wordpath/wordpath-api/internal/store"
)

// Service implements account registration and login.
type Service struct {
	users     store.UserStore
	jwt       JWTService
	passwords PasswordHasher
	logger    *slog.Logger
}

// NewService creates an auth service. Panics if any dependency is nil.
func NewService(users store.UserStore, jwt JWTService, passwords PasswordHasher, log *slog.Logger) *Service {
	if users == nil {
		panic("user store cannot be nil")
	}
	if jwt == nil {
		panic("jwt service cannot be nil")
	}
	if passwords == nil {
		panic("password hasher cannot be nil")
	}
	if log == nil {
		panic("logger cannot be nil")
	}

	return &Service{
		users:     users,
		jwt:       jwt,
		passwords: passwords,
		logger:    log.With(slog.String("component", "auth_service")),
	}
}

// Register creates an account and returns the new user with a signed
// token. Returns store.ErrEmailExists if the email is taken.
func (s *Service) Register(ctx context.Context, email, password string) (*domain.User, string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	hashed, err := s.passwords.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user, err := domain.NewUser(email, hashed)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// Login authenticates an account and returns the user with a signed
// token. A missing user and a wrong password both return
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := s.passwords.Compare(user.HashedPassword, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}
