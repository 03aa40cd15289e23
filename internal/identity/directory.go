package identity

import (
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Directory is the read-only identity provider. Users are fixed at start.
type Directory struct {
	users   []domain.User
	byID    map[domain.UserID]int
	byEmail map[string]int
}

// DemoUsers returns the three accounts the helpdesk ships with.
func DemoUsers() []domain.User {
	return []domain.User{
		{ID: "u-001", Name: "May", Email: "may@example.com", Role: domain.RoleUser, Department: "Marketing"},
		{ID: "u-002", Name: "Win", Email: "win.it@example.com", Role: domain.RoleAdmin, Department: "IT Support"},
		{ID: "u-003", Name: "Yai", Email: "yai.manager@example.com", Role: domain.RoleManager, Department: "IT Management"},
	}
}

// NewDirectory indexes users by id and lower-cased e-mail.
func NewDirectory(users []domain.User) *Directory {
	d := &Directory{
		users:   append([]domain.User(nil), users...),
		byID:    make(map[domain.UserID]int, len(users)),
		byEmail: make(map[string]int, len(users)),
	}
	for i, u := range d.users {
		d.byID[u.ID] = i
		d.byEmail[strings.ToLower(u.Email)] = i
	}
	return d
}

// NewDemoDirectory builds the demo directory where every account shares one
// password, stored as a bcrypt hash.
func NewDemoDirectory(password string, bcryptCost int) (*Directory, error) {
	hash, err := auth.HashPassword(password, bcryptCost)
	if err != nil {
		return nil, err
	}
	users := DemoUsers()
	for i := range users {
		users[i].PasswordHash = hash
	}
	return NewDirectory(users), nil
}

// Login resolves an e-mail and password to a user.
func (d *Directory) Login(email, password string) (*domain.User, error) {
	idx, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	user := d.users[idx]
	if user.PasswordHash == "" || auth.ComparePassword(user.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return &user, nil
}

// Get returns a copy of the user with the given id.
func (d *Directory) Get(id domain.UserID) (*domain.User, bool) {
	idx, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	user := d.users[idx]
	return &user, true
}

// DisplayName returns the user's name, or the raw id when unknown.
func (d *Directory) DisplayName(id domain.UserID) string {
	if user, ok := d.Get(id); ok && user.Name != "" {
		return user.Name
	}
	return id.String()
}

// Staff lists the users tickets can be assigned to.
func (d *Directory) Staff() []domain.User {
	var staff []domain.User
	for _, u := range d.users {
		if u.Role.IsStaff() {
			staff = append(staff, u)
		}
	}
	return staff
}

// IsStaff reports whether id belongs to an admin or manager.
func (d *Directory) IsStaff(id domain.UserID) bool {
	user, ok := d.Get(id)
	return ok && user.IsStaff()
}
