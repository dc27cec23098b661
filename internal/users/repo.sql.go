package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xnice1/studybuddy/internal/platform/db"
	"github.com/xnice1/studybuddy/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, username, role, created_at, updated_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches a user by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, username, role, created_at, updated_at FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// UpdateUser updates username, role and optionally the password hash.
func (r *Repository) UpdateUser(ctx context.Context, id int64, username, passwordHash string, role shared.Role) (User, error) {
	var (
		user    User
		roleRaw string
	)
	err := r.pool.QueryRow(ctx,
		`UPDATE users
		 SET username = $2,
		     role = $3,
		     password_hash = COALESCE(NULLIF($4, ''), password_hash),
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, username, role, created_at, updated_at`,
		id, username, string(role), passwordHash).
		Scan(&user.ID, &user.Username, &roleRaw, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, shared.ErrDuplicateUsername
		}
		return User{}, err
	}
	parsed, err := shared.ParseRole(roleRaw)
	if err != nil {
		return User{}, err
	}
	user.Role = parsed
	return user, nil
}

// DeleteUser removes a user unless it still owns courses.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var ownsCourses bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM courses WHERE owner_id = $1)`, id).Scan(&ownsCourses); err != nil {
			return err
		}
		if ownsCourses {
			return shared.ErrOwnedCoursesExist
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func scanUser(row pgx.Row) (User, error) {
	var (
		user    User
		roleRaw string
	)
	if err := row.Scan(&user.ID, &user.Username, &roleRaw, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return User{}, err
	}
	parsed, err := shared.ParseRole(roleRaw)
	if err != nil {
		return User{}, err
	}
	user.Role = parsed
	return user, nil
}

var _ RepositoryPort = (*Repository)(nil)
