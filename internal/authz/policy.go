package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xnice1/studybuddy/internal/shared"
)

// DecisionRecorder receives every evaluated decision, e.g. for metrics.
type DecisionRecorder interface {
	RecordDecision(op string, allowed bool, reason string)
}

// Evaluator combines role allow-sets, ownership resolution and hierarchical
// path consistency into a single allow/deny decision per operation.
type Evaluator struct {
	graph    ResourceGraph
	resolver *Resolver
	logger   *slog.Logger
	recorder DecisionRecorder
}

// NewEvaluator constructs an Evaluator over the given resource graph.
func NewEvaluator(graph ResourceGraph, logger *slog.Logger) *Evaluator {
	return &Evaluator{graph: graph, resolver: NewResolver(graph), logger: logger}
}

// WithRecorder attaches a decision recorder. Nil is allowed.
func (e *Evaluator) WithRecorder(r DecisionRecorder) *Evaluator {
	e.recorder = r
	return e
}

// Authorize evaluates the operation for the principal, in pinned order:
// authentication, hierarchical consistency, role membership, ownership.
// The first failing gate decides the outcome. A non-nil error means a lookup
// failed and no decision could be reached; callers must surface it as an
// internal failure, never as a deny.
func (e *Evaluator) Authorize(ctx context.Context, p *shared.Principal, op Operation, path PathRefs) (Decision, error) {
	decision, err := e.evaluate(ctx, p, op, path)
	if e.recorder != nil && err == nil {
		e.recorder.RecordDecision(string(op), decision.Allowed, string(decision.Reason))
	}
	if !decision.Allowed && err == nil && e.logger != nil {
		username := ""
		if p != nil {
			username = p.Username
		}
		e.logger.Debug("authorization denied",
			slog.String("op", string(op)),
			slog.String("user", username),
			slog.String("reason", string(decision.Reason)))
	}
	return decision, err
}

func (e *Evaluator) evaluate(ctx context.Context, p *shared.Principal, op Operation, path PathRefs) (Decision, error) {
	if p == nil {
		return Deny(DenyUnauthenticated), nil
	}

	if d, err := e.checkHierarchy(ctx, path); err != nil || !d.Allowed {
		return d, err
	}

	req, ok := requirements[op]
	if !ok {
		return Decision{}, fmt.Errorf("authz: no requirement registered for operation %q", op)
	}
	if !roleAllowed(req.Roles, p.Role) {
		return Deny(DenyForbidden), nil
	}

	if req.Ownership {
		owner, err := e.resolver.IsOwnerOrAdmin(ctx, p, mostSpecificRef(path))
		if err != nil {
			return Decision{}, err
		}
		if !owner {
			return Deny(DenyForbidden), nil
		}
	}

	return Allow(), nil
}

// checkHierarchy confirms that every child id supplied on a compound path
// actually belongs to the parent id next to it. A child that does not resolve
// at all is a not-found, a child under the wrong parent is a malformed
// reference; the two are never conflated.
func (e *Evaluator) checkHierarchy(ctx context.Context, path PathRefs) (Decision, error) {
	if path.QuestionID != 0 && path.QuizID != 0 {
		parent, err := e.graph.GetQuestionParentQuiz(ctx, path.QuestionID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Deny(DenyNotFound), nil
			}
			return Decision{}, err
		}
		if parent != path.QuizID {
			return Deny(DenyMalformedReference), nil
		}
	}
	if path.QuizID != 0 && path.CourseID != 0 {
		parent, err := e.graph.GetQuizParentCourse(ctx, path.QuizID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Deny(DenyNotFound), nil
			}
			return Decision{}, err
		}
		if parent != path.CourseID {
			return Deny(DenyMalformedReference), nil
		}
	}
	return Allow(), nil
}

// mostSpecificRef picks the deepest resource the path addresses.
func mostSpecificRef(path PathRefs) ResourceRef {
	switch {
	case path.QuestionID != 0:
		return QuestionRef(path.QuestionID)
	case path.QuizID != 0:
		return QuizRef(path.QuizID)
	default:
		return CourseRef(path.CourseID)
	}
}

func roleAllowed(allowed []shared.Role, role shared.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
