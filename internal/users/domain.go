package users

import (
	"time"

	"github.com/xnice1/studybuddy/internal/shared"
)

// User represents a user account for management.
type User struct {
	ID        int64
	Username  string
	Role      shared.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateUser carries the mutable account fields. Empty fields are left
// unchanged; only admins may change roles.
type UpdateUser struct {
	Username string
	Password string
	Role     string
}
