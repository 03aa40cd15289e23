package domain

// Role is the coarse identity role handed out by the identity provider.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// IsStaff reports whether the role belongs to the IT team.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleManager
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleManager:
		return true
	}
	return false
}
