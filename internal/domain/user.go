package domain

import (
	"strings"
	"time"
)

// UserRole enumerates access levels for accounts.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleStaff UserRole = "staff"
	RoleUser  UserRole = "user"
)

// Valid reports whether the value belongs to the closed role enumeration.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// User is an identity that files or handles tickets. Accounts created
// implicitly on first ticket contact carry an empty password hash and
// cannot log in until an admin sets a credential.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Role         UserRole
	Phone        *string
	City         *string
	Country      *string
	Address      *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins the name parts for display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanLogin reports whether the account holds a usable credential.
func (u *User) CanLogin() bool {
	return u.PasswordHash != ""
}
