package courses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xnice1/studybuddy/internal/shared"
)

// owner columns are coalesced so a course whose owner was removed still
// scans; such a course stays visible to admins and denies everyone else.
const courseColumns = `c.id, c.title, c.description, COALESCE(c.owner_id, 0), COALESCE(u.username, ''), c.created_at, c.updated_at`

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListCourses returns all courses ordered by id.
func (r *Repository) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c LEFT JOIN users u ON u.id = c.owner_id ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListCoursesByOwner returns courses owned by the given username.
func (r *Repository) ListCoursesByOwner(ctx context.Context, ownerUsername string) ([]Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses c JOIN users u ON u.id = c.owner_id WHERE u.username = $1 ORDER BY c.id`,
		ownerUsername)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// GetCourse fetches a course by id.
func (r *Repository) GetCourse(ctx context.Context, id int64) (Course, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses c LEFT JOIN users u ON u.id = c.owner_id WHERE c.id = $1`, id)
	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, shared.ErrNotFound
		}
		return Course{}, err
	}
	return course, nil
}

// CreateCourse inserts a course owned by the given username.
func (r *Repository) CreateCourse(ctx context.Context, in CreateCourse, ownerUsername string) (Course, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO courses (title, description, owner_id, created_at, updated_at)
		 SELECT $1, $2, u.id, NOW(), NOW() FROM users u WHERE u.username = $3
		 RETURNING id, title, description, owner_id, $3::text, created_at, updated_at`,
		in.Title, in.Description, ownerUsername)
	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Owner account vanished between authentication and insert.
			return Course{}, shared.ErrNotFound
		}
		return Course{}, err
	}
	return course, nil
}

// UpdateCourse updates title and description.
func (r *Repository) UpdateCourse(ctx context.Context, id int64, in CreateCourse) (Course, error) {
	row := r.pool.QueryRow(ctx,
		`WITH updated AS (
			UPDATE courses
			SET title = $2, description = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING id, title, description, owner_id, created_at, updated_at
		)
		SELECT c.id, c.title, c.description, COALESCE(c.owner_id, 0), COALESCE(u.username, ''), c.created_at, c.updated_at
		FROM updated c
		LEFT JOIN users u ON u.id = c.owner_id`,
		id, in.Title, in.Description)
	course, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Course{}, shared.ErrNotFound
		}
		return Course{}, err
	}
	return course, nil
}

// DeleteCourse removes a course; quizzes and questions cascade.
func (r *Repository) DeleteCourse(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func collectCourses(rows pgx.Rows) ([]Course, error) {
	var out []Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.OwnerID, &c.OwnerUsername, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Course{}, err
	}
	return c, nil
}

var _ RepositoryPort = (*Repository)(nil)
