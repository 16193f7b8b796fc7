package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique constraint was violated.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidRoleID occurs when a role filter is not numeric.
	ErrInvalidRoleID = errors.New("invalid roleId parameter")
	// ErrUnknownRole occurs when a referenced role does not exist.
	ErrUnknownRole = errors.New("unknown role")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
