package authz

import (
	"context"
	"errors"

	"github.com/xnice1/studybuddy/internal/shared"
)

// ResourceGraph is the read-only view of the ownership chain. Implementations
// return shared.ErrNotFound when a hop does not resolve; any other error is
// treated as an infrastructure failure, never as a deny.
type ResourceGraph interface {
	GetCourseOwner(ctx context.Context, courseID int64) (string, error)
	GetQuizParentCourse(ctx context.Context, quizID int64) (int64, error)
	GetQuestionParentQuiz(ctx context.Context, questionID int64) (int64, error)
}

// Resolver answers whether a principal is the effective owner of a resource.
// It is a pure read-side query with no caching, so every check observes the
// current ownership state.
type Resolver struct {
	graph ResourceGraph
}

// NewResolver constructs a Resolver over the given graph.
func NewResolver(graph ResourceGraph) *Resolver {
	return &Resolver{graph: graph}
}

// IsOwnerOrAdmin reports whether the principal is an admin or owns the course
// that transitively contains the referenced resource. A missing hop anywhere
// in the chain, or a course without an owner, yields false.
func (r *Resolver) IsOwnerOrAdmin(ctx context.Context, p *shared.Principal, ref ResourceRef) (bool, error) {
	if p == nil {
		return false, nil
	}
	if p.IsAdmin() {
		return true, nil
	}

	id := ref.id
	if ref.kind == refQuestion {
		quizID, err := r.graph.GetQuestionParentQuiz(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		id = quizID
	}
	if ref.kind == refQuestion || ref.kind == refQuiz {
		courseID, err := r.graph.GetQuizParentCourse(ctx, id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		id = courseID
	}

	owner, err := r.graph.GetCourseOwner(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if owner == "" {
		// Orphaned course: owned by nobody, not by everybody.
		return false, nil
	}
	return owner == p.Username, nil
}
