package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fleetdispatch/fleetdispatch/internal/api/models"
	"github.com/fleetdispatch/fleetdispatch/internal/api/response"
	"github.com/fleetdispatch/fleetdispatch/internal/auth"
)

// AuthHandler handles authentication and account endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles POST /v1/auth/register - create a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	tokenResp, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			response.Conflict(w, r, "username is already taken")
		case errors.Is(err, auth.ErrEmailTaken):
			response.Conflict(w, r, "email is already registered")
		default:
			response.InternalError(w, r, "registration failed")
		}
		return
	}

	response.JSON(w, r, http.StatusCreated, toAPITokens(tokenResp))
}

// Login handles POST /v1/auth/login - authenticate with username and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	tokenResp, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Unauthorized(w, r, "invalid username or password")
			return
		}
		response.InternalError(w, r, "login failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPITokens(tokenResp))
}

// RefreshToken handles POST /v1/auth/refresh - refresh access token.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	tokenResp, err := h.authService.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidRefreshToken):
			response.Unauthorized(w, r, "invalid refresh token")
		case errors.Is(err, auth.ErrRefreshTokenExpired):
			response.Unauthorized(w, r, "refresh token has expired")
		case errors.Is(err, auth.ErrUserNotFound):
			response.Unauthorized(w, r, "user not found")
		default:
			response.InternalError(w, r, "token refresh failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, toAPITokens(tokenResp))
}

// Logout handles POST /v1/auth/logout - revoke current session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.RefreshToken == "" {
		response.BadRequest(w, r, "refreshToken is required", nil)
		return
	}

	if err := h.authService.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil {
		response.InternalError(w, r, "logout failed")
		return
	}

	response.NoContent(w, r)
}

// LogoutAll handles POST /v1/auth/logout-all - revoke all sessions for the user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	if err := h.authService.RevokeAllTokens(r.Context(), userID); err != nil {
		response.InternalError(w, r, "logout failed")
		return
	}

	response.NoContent(w, r)
}

// Me handles GET /v1/me - return the caller's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, toAPIUser(user))
}

// ChangePassword handles PUT /v1/me/password. All sessions are
// terminated on success; the client must log in again.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	err := h.authService.ChangePassword(r.Context(), GetUserID(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.writeAccountError(w, r, err, "password change failed")
		return
	}

	response.NoContent(w, r)
}

// ChangeUsername handles PUT /v1/me/username.
func (h *AuthHandler) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	var req models.UsernameChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	user, err := h.authService.ChangeUsername(r.Context(), GetUserID(r.Context()), req.Password, req.Username)
	if err != nil {
		h.writeAccountError(w, r, err, "username change failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIUser(user))
}

// ChangeEmail handles PUT /v1/me/email.
func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	var req models.EmailChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	user, err := h.authService.ChangeEmail(r.Context(), GetUserID(r.Context()), req.Password, req.Email)
	if err != nil {
		h.writeAccountError(w, r, err, "email change failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIUser(user))
}

// DeleteAccount handles DELETE /v1/me - delete the caller's account.
// The current password is required as confirmation.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if req.Password == "" {
		response.BadRequest(w, r, "password is required", nil)
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), GetUserID(r.Context()), req.Password); err != nil {
		h.writeAccountError(w, r, err, "account deletion failed")
		return
	}

	response.NoContent(w, r)
}

// GrantRole handles POST /v1/admin/roles - grant a role to a user.
func (h *AuthHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.authService.GrantRole)
}

// RevokeRole handles DELETE /v1/admin/roles - revoke a role from a user.
func (h *AuthHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.authService.RevokeRole)
}

func (h *AuthHandler) changeRole(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, userID, role string) (*auth.User, error),
) {
	var req models.RoleChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if !checkRequest(w, r, &req) {
		return
	}

	target, err := h.authService.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "role change failed")
		return
	}

	user, err := apply(r.Context(), target.ID, string(req.Role))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRole) {
			response.BadRequest(w, r, "invalid role", nil)
			return
		}
		response.InternalError(w, r, "role change failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIUser(user))
}

// currentUser loads the authenticated user, writing the error response
// on failure.
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return nil, false
	}

	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.Unauthorized(w, r, "user not found")
			return nil, false
		}
		response.InternalError(w, r, "loading account failed")
		return nil, false
	}

	return user, true
}

func (h *AuthHandler) writeAccountError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		response.Unauthorized(w, r, "password verification failed")
	case errors.Is(err, auth.ErrUserNotFound):
		response.Unauthorized(w, r, "user not found")
	case errors.Is(err, auth.ErrUsernameTaken):
		response.Conflict(w, r, "username is already taken")
	case errors.Is(err, auth.ErrEmailTaken):
		response.Conflict(w, r, "email is already registered")
	default:
		response.InternalError(w, r, fallback)
	}
}

// toAPITokens converts a domain token response to the API shape.
func toAPITokens(t *auth.TokenResponse) models.TokenResponse {
	return models.TokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresIn:    t.ExpiresIn,
		User:         toAPIUser(t.User),
	}
}

// toAPIUser converts a domain user to the API account view.
func toAPIUser(u *auth.User) models.User {
	roles := make([]models.Role, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, models.Role(role))
	}

	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Roles:     roles,
		CreatedAt: models.Timestamp(u.CreatedAt),
	}
}
