package domain

import "fmt"

// Role identifies which side of the platform an account belongs to.
type Role string

const (
	RoleCustomer Role = "customer"
	RolePharmacy Role = "pharmacy"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw string into a Role, rejecting anything outside the
// closed set. Unknown roles are caught here, at construction time, rather than
// at every comparison site.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RolePharmacy, RoleRider, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
