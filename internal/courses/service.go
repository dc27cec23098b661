package courses

import (
	"context"

	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/shared"
)

// RepositoryPort defines data access methods for courses.
type RepositoryPort interface {
	ListCourses(ctx context.Context) ([]Course, error)
	ListCoursesByOwner(ctx context.Context, ownerUsername string) ([]Course, error)
	GetCourse(ctx context.Context, id int64) (Course, error)
	CreateCourse(ctx context.Context, in CreateCourse, ownerUsername string) (Course, error)
	UpdateCourse(ctx context.Context, id int64, in CreateCourse) (Course, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// Service handles course business rules.
type Service struct {
	repo      RepositoryPort
	evaluator *authz.Evaluator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, evaluator *authz.Evaluator) *Service {
	return &Service{repo: repo, evaluator: evaluator}
}

// ListForPrincipal returns every course for admins and the principal's own
// courses otherwise.
func (s *Service) ListForPrincipal(ctx context.Context, p *shared.Principal) ([]Course, error) {
	decision, err := s.evaluator.Authorize(ctx, p, authz.OpCourseList, authz.PathRefs{})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	if p.IsAdmin() {
		return s.repo.ListCourses(ctx)
	}
	return s.repo.ListCoursesByOwner(ctx, p.Username)
}

// GetCourse returns one course to its owner or an admin.
func (s *Service) GetCourse(ctx context.Context, p *shared.Principal, id int64) (Course, error) {
	decision, err := s.evaluator.Authorize(ctx, p, authz.OpCourseRead, authz.PathRefs{CourseID: id})
	if err != nil {
		return Course{}, err
	}
	if err := decision.Err(); err != nil {
		return Course{}, err
	}
	return s.repo.GetCourse(ctx, id)
}

// CreateCourse creates a course owned by the calling principal.
func (s *Service) CreateCourse(ctx context.Context, p *shared.Principal, in CreateCourse) (Course, error) {
	decision, err := s.evaluator.Authorize(ctx, p, authz.OpCourseCreate, authz.PathRefs{})
	if err != nil {
		return Course{}, err
	}
	if err := decision.Err(); err != nil {
		return Course{}, err
	}
	return s.repo.CreateCourse(ctx, in, p.Username)
}

// UpdateCourse updates title and description.
func (s *Service) UpdateCourse(ctx context.Context, p *shared.Principal, id int64, in CreateCourse) (Course, error) {
	decision, err := s.evaluator.Authorize(ctx, p, authz.OpCourseUpdate, authz.PathRefs{CourseID: id})
	if err != nil {
		return Course{}, err
	}
	if err := decision.Err(); err != nil {
		return Course{}, err
	}
	return s.repo.UpdateCourse(ctx, id, in)
}

// DeleteCourse removes a course and, through the schema, its quizzes and
// questions.
func (s *Service) DeleteCourse(ctx context.Context, p *shared.Principal, id int64) error {
	decision, err := s.evaluator.Authorize(ctx, p, authz.OpCourseDelete, authz.PathRefs{CourseID: id})
	if err != nil {
		return err
	}
	if err := decision.Err(); err != nil {
		return err
	}
	return s.repo.DeleteCourse(ctx, id)
}
