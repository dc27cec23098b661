package quizzes

import (
	"context"
	"strconv"

	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/shared"
)

// RepositoryPort abstracts quiz persistence.
type RepositoryPort interface {
	ListQuizzes(ctx context.Context) ([]Quiz, error)
	ListQuizzesByCourse(ctx context.Context, courseID int64) ([]Quiz, error)
	GetQuiz(ctx context.Context, id int64) (Quiz, error)
	CreateQuiz(ctx context.Context, in CreateQuiz) (Quiz, error)
	UpdateQuiz(ctx context.Context, id int64, in CreateQuiz) (Quiz, error)
	DeleteQuiz(ctx context.Context, id int64) error
}

// Service enforces access rules around the quiz catalog.
type Service struct {
	repo      RepositoryPort
	evaluator *authz.Evaluator
	cache     *Cache
}

func NewService(repo RepositoryPort, evaluator *authz.Evaluator, cache *Cache) *Service {
	return &Service{repo: repo, evaluator: evaluator, cache: cache}
}

// ListQuizzes returns the full catalog. The listing is viewer independent,
// so it is served through the catalog cache.
func (s *Service) ListQuizzes(ctx context.Context, principal *shared.Principal) ([]Quiz, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuizList, authz.PathRefs{})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Err()
	}
	var out []Quiz
	if err := s.cache.FetchList(ctx, []string{"quizzes", "all"}, &out, s.repo.ListQuizzes); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByCourse returns the quizzes attached to one course.
func (s *Service) ListByCourse(ctx context.Context, principal *shared.Principal, courseID int64) ([]Quiz, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuizList, authz.PathRefs{})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Err()
	}
	var out []Quiz
	loader := func(ctx context.Context) ([]Quiz, error) {
		return s.repo.ListQuizzesByCourse(ctx, courseID)
	}
	if err := s.cache.FetchList(ctx, []string{"quizzes", "course", strconv.FormatInt(courseID, 10)}, &out, loader); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetQuiz(ctx context.Context, principal *shared.Principal, id int64) (Quiz, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuizRead, authz.PathRefs{QuizID: id})
	if err != nil {
		return Quiz{}, err
	}
	if !decision.Allowed {
		return Quiz{}, decision.Err()
	}
	return s.repo.GetQuiz(ctx, id)
}

// CreateQuiz attaches a quiz to a course. The caller must own the target
// course or be an administrator.
func (s *Service) CreateQuiz(ctx context.Context, principal *shared.Principal, in CreateQuiz) (Quiz, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuizCreate, authz.PathRefs{CourseID: in.CourseID})
	if err != nil {
		return Quiz{}, err
	}
	if !decision.Allowed {
		return Quiz{}, decision.Err()
	}
	quiz, err := s.repo.CreateQuiz(ctx, in)
	if err != nil {
		return Quiz{}, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		return Quiz{}, err
	}
	return quiz, nil
}

func (s *Service) UpdateQuiz(ctx context.Context, principal *shared.Principal, id int64, in CreateQuiz) (Quiz, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuizUpdate, authz.PathRefs{QuizID: id})
	if err != nil {
		return Quiz{}, err
	}
	if !decision.Allowed {
		return Quiz{}, decision.Err()
	}
	quiz, err := s.repo.UpdateQuiz(ctx, id, in)
	if err != nil {
		return Quiz{}, err
	}
	if err := s.cache.Bump(ctx); err != nil {
		return Quiz{}, err
	}
	return quiz, nil
}

func (s *Service) DeleteQuiz(ctx context.Context, principal *shared.Principal, id int64) error {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuizDelete, authz.PathRefs{QuizID: id})
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return decision.Err()
	}
	if err := s.repo.DeleteQuiz(ctx, id); err != nil {
		return err
	}
	return s.cache.Bump(ctx)
}
