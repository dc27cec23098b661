package authn

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xnice1/studybuddy/internal/shared"
)

// Repository defines persistence operations for accounts.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (Account, error)
	Create(ctx context.Context, username, passwordHash string, role shared.Role) (Account, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Account{}, shared.ErrInvalidCredentials
		}
		return Account{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, shared.ErrInvalidCredentials
	}
	return account, nil
}

// Register creates a new account. An empty role defaults to STUDENT.
func (s *Service) Register(ctx context.Context, username, password, role string) (Account, error) {
	parsed := shared.RoleStudent
	if strings.TrimSpace(role) != "" {
		var err error
		parsed, err = shared.ParseRole(role)
		if err != nil {
			return Account{}, err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, strings.TrimSpace(username), string(hash), parsed)
}

// Principal resolves a verified token subject to a request principal.
// A subject whose account was deleted after issuance resolves to
// shared.ErrNotFound, which the gate treats as unauthenticated.
func (s *Service) Principal(ctx context.Context, username string) (shared.Principal, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return shared.Principal{}, err
	}
	return shared.Principal{Username: account.Username, Role: account.Role}, nil
}
