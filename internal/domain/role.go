package domain

import "fmt"

// Role classifies a user's authorization level.
type Role string

// Defined role types. The zero value is not a valid role.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole converts a string into a Role.
// Returns ErrInvalidRole for unknown values so that bad enum input is
// rejected at request binding, before it reaches the criteria builder.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether the role is one of the defined role types.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}
