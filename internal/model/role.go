package model

import "fmt"

// Role is the closed set of actor roles. Admin is a structural override:
// every column and row check short-circuits to visible for it, so an admin
// profile can never be configured into a restricted state by accident.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleStandardUser Role = "user"
)

// ParseRole maps a stored role string onto the enumeration. Anything outside
// the two known values is rejected, never coerced.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleStandardUser:
		return RoleStandardUser, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidProfile, raw)
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
