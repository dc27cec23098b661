package shared

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
	RoleStudent    Role = "STUDENT"
)

// ParseRole normalizes a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleInstructor:
		return RoleInstructor, nil
	case RoleStudent:
		return RoleStudent, nil
	}
	return "", fmt.Errorf("shared: unknown role %q", s)
}

// Principal describes the authenticated actor for one request.
type Principal struct {
	Username string
	Role     Role
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
