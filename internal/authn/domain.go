package authn

import (
	"time"

	"github.com/xnice1/studybuddy/internal/shared"
)

// Account represents a stored user account.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         shared.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
