package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xnice1/studybuddy/internal/shared"
)

// PGGraph reads the ownership chain from PostgreSQL.
type PGGraph struct {
	pool *pgxpool.Pool
}

// NewPGGraph constructs a graph over the given pool.
func NewPGGraph(pool *pgxpool.Pool) *PGGraph {
	return &PGGraph{pool: pool}
}

// GetCourseOwner returns the username owning the course. A course whose owner
// row is gone resolves to an empty username rather than an error.
func (g *PGGraph) GetCourseOwner(ctx context.Context, courseID int64) (string, error) {
	var owner *string
	err := g.pool.QueryRow(ctx,
		`SELECT u.username FROM courses c LEFT JOIN users u ON u.id = c.owner_id WHERE c.id = $1`,
		courseID).Scan(&owner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	if owner == nil {
		return "", nil
	}
	return *owner, nil
}

// GetQuizParentCourse returns the course id containing the quiz.
func (g *PGGraph) GetQuizParentCourse(ctx context.Context, quizID int64) (int64, error) {
	var courseID int64
	err := g.pool.QueryRow(ctx, `SELECT course_id FROM quizzes WHERE id = $1`, quizID).Scan(&courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return courseID, nil
}

// GetQuestionParentQuiz returns the quiz id containing the question.
func (g *PGGraph) GetQuestionParentQuiz(ctx context.Context, questionID int64) (int64, error) {
	var quizID int64
	err := g.pool.QueryRow(ctx, `SELECT quiz_id FROM questions WHERE id = $1`, questionID).Scan(&quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return quizID, nil
}

var _ ResourceGraph = (*PGGraph)(nil)
