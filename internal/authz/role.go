package authz

// Role is the closed set of actor roles. A user's role is fixed for the
// lifetime of a session; the policy table matches on it exhaustively so
// that adding a role is a compile-time-visible change.
type Role string

const (
	RoleConsumer Role = "consumer"
	RolePharmacy Role = "pharmacy"
	RoleAdmin    Role = "admin"
)

// IsValid checks if the role is a recognized value
func (r Role) IsValid() bool {
	switch r {
	case RoleConsumer, RolePharmacy, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw string (from storage or a token claim) into a
// Role, reporting whether it is one of the recognized values.
func ParseRole(raw string) (Role, bool) {
	role := Role(raw)
	return role, role.IsValid()
}
