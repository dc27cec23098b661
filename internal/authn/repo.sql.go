package authn

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xnice1/studybuddy/internal/shared"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches an account by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (Account, error) {
	var (
		account Account
		role    string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at, updated_at FROM users WHERE username = $1`,
		username).Scan(&account.ID, &account.Username, &account.PasswordHash, &role, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	parsed, err := shared.ParseRole(role)
	if err != nil {
		return Account{}, err
	}
	account.Role = parsed
	return account, nil
}

// Create inserts a new account row.
func (r *PGRepository) Create(ctx context.Context, username, passwordHash string, role shared.Role) (Account, error) {
	var account Account
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 RETURNING id, username, password_hash, created_at, updated_at`,
		username, passwordHash, string(role)).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.ErrDuplicateUsername
		}
		return Account{}, err
	}
	account.Role = role
	return account, nil
}

var _ Repository = (*PGRepository)(nil)
