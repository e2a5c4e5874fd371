package models

// RegisterRequest creates a new user account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest authenticates a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries a fresh access/refresh token pair. The account
// snapshot rides along so clients can hydrate without a /me call.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
	User         User   `json:"user"`
}

// RefreshRequest exchanges a refresh token for a new pair.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// User is the account view returned by /me.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []Role    `json:"roles"`
	CreatedAt Timestamp `json:"createdAt"`
}

// PasswordChangeRequest changes the caller's password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72"`
}

// UsernameChangeRequest changes the caller's username. The current
// password is required as confirmation.
type UsernameChangeRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Password string `json:"password" validate:"required"`
}

// EmailChangeRequest changes the caller's email address. The current
// password is required as confirmation.
type EmailChangeRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RoleChangeRequest grants or revokes a role (admin only).
type RoleChangeRequest struct {
	Username string `json:"username" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=ROLE_ADMIN ROLE_MANAGER ROLE_DRIVER"`
}
