package questions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xnice1/studybuddy/internal/shared"
)

// Repository persists questions in Postgres. Options and answer indexes are
// stored as array columns.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const questionColumns = `id, quiz_id, text, options, correct_answers, created_at, updated_at`

func (r *Repository) ListQuestions(ctx context.Context, quizID int64) ([]Question, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quizzes WHERE id = $1)`, quizID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrNotFound
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE quiz_id = $1
		ORDER BY id`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Options, &q.CorrectAnswers, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *Repository) GetQuestion(ctx context.Context, id int64) (Question, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+questionColumns+`
		FROM questions
		WHERE id = $1`, id)
	return scanQuestion(row)
}

func (r *Repository) CreateQuestion(ctx context.Context, quizID int64, in CreateQuestion) (Question, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO questions (quiz_id, text, options, correct_answers)
		VALUES ($1, $2, $3, $4)
		RETURNING `+questionColumns, quizID, in.Text, in.Options, in.CorrectAnswers)
	return scanQuestion(row)
}

func (r *Repository) UpdateQuestion(ctx context.Context, id int64, in CreateQuestion) (Question, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE questions
		SET text = $2, options = $3, correct_answers = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+questionColumns, id, in.Text, in.Options, in.CorrectAnswers)
	return scanQuestion(row)
}

func (r *Repository) DeleteQuestion(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanQuestion(row pgx.Row) (Question, error) {
	var q Question
	err := row.Scan(&q.ID, &q.QuizID, &q.Text, &q.Options, &q.CorrectAnswers, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Question{}, shared.ErrNotFound
	}
	if err != nil {
		return Question{}, err
	}
	return q, nil
}
