package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	UpdateUser(ctx context.Context, id int64, username, passwordHash string, role shared.Role) (User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Service handles user management rules.
type Service struct {
	repo      RepositoryPort
	evaluator *authz.Evaluator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, evaluator *authz.Evaluator) *Service {
	return &Service{repo: repo, evaluator: evaluator}
}

// ListUsers returns all accounts. Admin only.
func (s *Service) ListUsers(ctx context.Context, p *shared.Principal) ([]User, error) {
	decision, err := s.evaluator.Authorize(ctx, p, authz.OpUserList, authz.PathRefs{})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx)
}

// GetUser returns one account, visible to admins and to the account itself.
func (s *Service) GetUser(ctx context.Context, p *shared.Principal, id int64) (User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.requireSelfOrAdmin(ctx, p, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateUser changes username, password or role. Admins may update anyone;
// an account may update itself but never its own role.
func (s *Service) UpdateUser(ctx context.Context, p *shared.Principal, id int64, in UpdateUser) (User, error) {
	existing, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := s.requireSelfOrAdmin(ctx, p, existing); err != nil {
		return User{}, err
	}

	role := existing.Role
	if strings.TrimSpace(in.Role) != "" {
		if p == nil || !p.IsAdmin() {
			return User{}, shared.ErrForbidden
		}
		role, err = shared.ParseRole(in.Role)
		if err != nil {
			return User{}, err
		}
	}

	username := existing.Username
	if strings.TrimSpace(in.Username) != "" {
		username = strings.TrimSpace(in.Username)
	}

	passwordHash := ""
	if strings.TrimSpace(in.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		passwordHash = string(hash)
	}

	return s.repo.UpdateUser(ctx, id, username, passwordHash, role)
}

// DeleteUser removes an account. Admin only; an account still owning courses
// cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, p *shared.Principal, id int64) error {
	decision, err := s.evaluator.Authorize(ctx, p, authz.OpUserManage, authz.PathRefs{})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}
	return s.repo.DeleteUser(ctx, id)
}

func (s *Service) requireSelfOrAdmin(ctx context.Context, p *shared.Principal, target User) error {
	if p == nil {
		return shared.ErrUnauthenticated
	}
	if p.IsAdmin() || p.Username == target.Username {
		return nil
	}
	return shared.ErrForbidden
}
