package constants

// Staff roles.
const (
	Admin    = "admin"
	Manager  = "manager"
	Operator = "operator"
	Viewer   = "viewer"
)

// ValidRoles is the set of allowed values for staff.role.
var ValidRoles = []string{Viewer, Operator, Manager, Admin}

// IsValidRole returns true if role is one of the allowed values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
