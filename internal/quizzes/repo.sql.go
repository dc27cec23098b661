package quizzes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xnice1/studybuddy/internal/shared"
)

// Repository persists quizzes in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const quizColumns = `q.id, q.title, q.course_id, c.title, q.created_at, q.updated_at`

func (r *Repository) ListQuizzes(ctx context.Context) ([]Quiz, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+quizColumns+`
		FROM quizzes q
		JOIN courses c ON c.id = q.course_id
		ORDER BY q.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

func (r *Repository) ListQuizzesByCourse(ctx context.Context, courseID int64) ([]Quiz, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+quizColumns+`
		FROM quizzes q
		JOIN courses c ON c.id = q.course_id
		WHERE q.course_id = $1
		ORDER BY q.id`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

func (r *Repository) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+quizColumns+`
		FROM quizzes q
		JOIN courses c ON c.id = q.course_id
		WHERE q.id = $1`, id)
	return scanQuiz(row)
}

func (r *Repository) CreateQuiz(ctx context.Context, in CreateQuiz) (Quiz, error) {
	row := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO quizzes (title, course_id)
			VALUES ($1, $2)
			RETURNING id, title, course_id, created_at, updated_at
		)
		SELECT i.id, i.title, i.course_id, c.title, i.created_at, i.updated_at
		FROM inserted i
		JOIN courses c ON c.id = i.course_id`, in.Title, in.CourseID)
	quiz, err := scanQuiz(row)
	if errors.Is(err, shared.ErrNotFound) {
		// course disappeared between the ownership check and the insert
		return Quiz{}, shared.ErrNotFound
	}
	return quiz, err
}

func (r *Repository) UpdateQuiz(ctx context.Context, id int64, in CreateQuiz) (Quiz, error) {
	row := r.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE quizzes
			SET title = $2, updated_at = now()
			WHERE id = $1
			RETURNING id, title, course_id, created_at, updated_at
		)
		SELECT u.id, u.title, u.course_id, c.title, u.created_at, u.updated_at
		FROM updated u
		JOIN courses c ON c.id = u.course_id`, id, in.Title)
	return scanQuiz(row)
}

func (r *Repository) DeleteQuiz(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collectQuizzes(rows pgx.Rows) ([]Quiz, error) {
	var out []Quiz
	for rows.Next() {
		var q Quiz
		if err := rows.Scan(&q.ID, &q.Title, &q.CourseID, &q.CourseTitle, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanQuiz(row pgx.Row) (Quiz, error) {
	var q Quiz
	err := row.Scan(&q.ID, &q.Title, &q.CourseID, &q.CourseTitle, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Quiz{}, shared.ErrNotFound
	}
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}
