package auth

import (
	"slices"
	"time"
)

// Role names granted to users. Every account starts with RoleDriver;
// managers and admins are promoted by an existing admin.
const (
	RoleAdmin   = "ROLE_ADMIN"
	RoleManager = "ROLE_MANAGER"
	RoleDriver  = "ROLE_DRIVER"
)

// ValidRole reports whether name is a recognized role.
func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleManager, RoleDriver:
		return true
	}
	return false
}

// User is an account in the system.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// TokenResponse is the result of a successful login, registration, or
// refresh. ExpiresIn is the access token lifetime in seconds.
type TokenResponse struct {
	AccessToken  string
	TokenType    string
	ExpiresIn    int64
	RefreshToken string
	User         *User
}
