package questions

import (
	"context"

	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/shared"
)

// RepositoryPort abstracts question persistence.
type RepositoryPort interface {
	ListQuestions(ctx context.Context, quizID int64) ([]Question, error)
	GetQuestion(ctx context.Context, id int64) (Question, error)
	CreateQuestion(ctx context.Context, quizID int64, in CreateQuestion) (Question, error)
	UpdateQuestion(ctx context.Context, id int64, in CreateQuestion) (Question, error)
	DeleteQuestion(ctx context.Context, id int64) error
}

// Service enforces access rules for questions. Every operation is addressed
// through the owning quiz, so a questionID paired with the wrong quizID is
// rejected before any role or ownership check.
type Service struct {
	repo      RepositoryPort
	evaluator *authz.Evaluator
}

func NewService(repo RepositoryPort, evaluator *authz.Evaluator) *Service {
	return &Service{repo: repo, evaluator: evaluator}
}

func (s *Service) ListQuestions(ctx context.Context, principal *shared.Principal, quizID int64) ([]Question, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuestionList, authz.PathRefs{QuizID: quizID})
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, decision.Err()
	}
	return s.repo.ListQuestions(ctx, quizID)
}

func (s *Service) GetQuestion(ctx context.Context, principal *shared.Principal, quizID, questionID int64) (Question, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuestionRead, authz.PathRefs{QuizID: quizID, QuestionID: questionID})
	if err != nil {
		return Question{}, err
	}
	if !decision.Allowed {
		return Question{}, decision.Err()
	}
	return s.repo.GetQuestion(ctx, questionID)
}

// CreateQuestion adds a question to a quiz. The caller must own the course
// the quiz belongs to, or be an administrator.
func (s *Service) CreateQuestion(ctx context.Context, principal *shared.Principal, quizID int64, in CreateQuestion) (Question, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuestionCreate, authz.PathRefs{QuizID: quizID})
	if err != nil {
		return Question{}, err
	}
	if !decision.Allowed {
		return Question{}, decision.Err()
	}
	return s.repo.CreateQuestion(ctx, quizID, in)
}

func (s *Service) UpdateQuestion(ctx context.Context, principal *shared.Principal, quizID, questionID int64, in CreateQuestion) (Question, error) {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuestionUpdate, authz.PathRefs{QuizID: quizID, QuestionID: questionID})
	if err != nil {
		return Question{}, err
	}
	if !decision.Allowed {
		return Question{}, decision.Err()
	}
	return s.repo.UpdateQuestion(ctx, questionID, in)
}

func (s *Service) DeleteQuestion(ctx context.Context, principal *shared.Principal, quizID, questionID int64) error {
	decision, err := s.evaluator.Authorize(ctx, principal, authz.OpQuestionDelete, authz.PathRefs{QuizID: quizID, QuestionID: questionID})
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return decision.Err()
	}
	return s.repo.DeleteQuestion(ctx, questionID)
}
