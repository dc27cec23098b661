package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrUnauthenticated indicates the request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the authenticated principal may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrMalformedReference indicates a nested resource does not belong to its claimed parent.
	ErrMalformedReference = errors.New("malformed reference")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrDuplicateUsername indicates the username is already taken.
	ErrDuplicateUsername = errors.New("username already registered")
	// ErrOwnedCoursesExist blocks deleting an account that still owns courses.
	ErrOwnedCoursesExist = errors.New("user owns one or more courses and cannot be deleted")
)

// IsDomainError reports whether err is one of the expected domain outcomes,
// as opposed to an infrastructure failure worth logging at error level.
func IsDomainError(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound,
		ErrUnauthenticated,
		ErrForbidden,
		ErrMalformedReference,
		ErrInvalidCredentials,
		ErrDuplicateUsername,
		ErrOwnedCoursesExist,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
