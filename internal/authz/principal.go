package authz

import "github.com/google/uuid"

// Principal is the authenticated actor performing an action. It is supplied
// by the authentication boundary and passed explicitly into every service
// call; nothing in the core reads identity from ambient state.
type Principal struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the principal carries the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
