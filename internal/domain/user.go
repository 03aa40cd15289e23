package domain

// UserID is a weak reference into the identity provider's user set.
// Nothing in the ticket store dereferences it.
type UserID string

func (id UserID) String() string {
	return string(id)
}

// User is the identity record returned by the identity provider.
type User struct {
	ID           UserID
	Name         string
	Email        string
	Role         Role
	Department   string
	PasswordHash string
}

// IsStaff reports whether the user may triage tickets.
func (u *User) IsStaff() bool {
	return u != nil && u.Role.IsStaff()
}
