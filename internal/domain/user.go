package domain

import "time"

// UserRole enumerates what a user may do in the helpdesk.
type UserRole string

const (
	RoleEmployee      UserRole = "EMPLOYEE"
	RoleTechnician    UserRole = "TECHNICIAN"
	RoleAdministrator UserRole = "ADMINISTRATOR"
)

// User is the domain model for everyone who logs in: employees submit
// tickets, technicians and administrators attend them.
type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSubmit reports whether the user may file new tickets.
func (u *User) CanSubmit() bool {
	return u.Active
}

// CanAttend reports whether the user may claim and complete tickets.
func (u *User) CanAttend() bool {
	return u.Active && (u.Role == RoleTechnician || u.Role == RoleAdministrator)
}
