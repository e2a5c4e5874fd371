package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

// InMemoryUserRepository is an in-memory implementation of UserRepository.
// This is intended for tests and local development.
type InMemoryUserRepository struct {
	mu         sync.RWMutex
	users      map[string]*User // keyed by user ID
	byUsername map[string]string
	byEmail    map[string]string
}

// NewInMemoryUserRepository creates a new in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:      make(map[string]*User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

// Create creates a new user.
func (r *InMemoryUserRepository) Create(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[strings.ToLower(user.Username)]; ok {
		return ErrUsernameTaken
	}
	if _, ok := r.byEmail[strings.ToLower(user.Email)]; ok {
		return ErrEmailTaken
	}

	userCopy := cloneUser(user)
	r.users[user.ID] = userCopy
	r.byUsername[strings.ToLower(user.Username)] = user.ID
	r.byEmail[strings.ToLower(user.Email)] = user.ID

	return nil
}

// FindByID finds a user by their internal ID.
func (r *InMemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(user), nil
}

// FindByUsername finds a user by username (case-insensitive).
func (r *InMemoryUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.users[id]), nil
}

// FindByEmail finds a user by email (case-insensitive).
func (r *InMemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return cloneUser(r.users[id]), nil
}

// Update replaces a stored user.
func (r *InMemoryUserRepository) Update(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}

	newUsername := strings.ToLower(user.Username)
	if id, taken := r.byUsername[newUsername]; taken && id != user.ID {
		return ErrUsernameTaken
	}
	newEmail := strings.ToLower(user.Email)
	if id, taken := r.byEmail[newEmail]; taken && id != user.ID {
		return ErrEmailTaken
	}

	delete(r.byUsername, strings.ToLower(existing.Username))
	delete(r.byEmail, strings.ToLower(existing.Email))

	r.users[user.ID] = cloneUser(user)
	r.byUsername[newUsername] = user.ID
	r.byEmail[newEmail] = user.ID

	return nil
}

// Delete removes a user.
func (r *InMemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}

	delete(r.byUsername, strings.ToLower(user.Username))
	delete(r.byEmail, strings.ToLower(user.Email))
	delete(r.users, id)

	return nil
}

func cloneUser(u *User) *User {
	userCopy := *u
	userCopy.Roles = append([]string(nil), u.Roles...)
	return &userCopy
}

// InMemoryRefreshTokenRepository is an in-memory implementation of
// RefreshTokenRepository. This is intended for tests and local development.
type InMemoryRefreshTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*RefreshToken // keyed by token value
	byUser map[string][]string      // userID -> list of token values
}

// NewInMemoryRefreshTokenRepository creates a new in-memory refresh token repository.
func NewInMemoryRefreshTokenRepository() *InMemoryRefreshTokenRepository {
	return &InMemoryRefreshTokenRepository{
		tokens: make(map[string]*RefreshToken),
		byUser: make(map[string][]string),
	}
}

// Create stores a new refresh token.
func (r *InMemoryRefreshTokenRepository) Create(_ context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokenCopy := *token
	r.tokens[token.Token] = &tokenCopy
	r.byUser[token.UserID] = append(r.byUser[token.UserID], token.Token)

	return nil
}

// FindByToken finds a refresh token by its value.
func (r *InMemoryRefreshTokenRepository) FindByToken(_ context.Context, tokenValue string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[tokenValue]
	if !ok {
		return nil, ErrInvalidRefreshToken
	}

	tokenCopy := *token
	return &tokenCopy, nil
}

// Revoke marks a refresh token as revoked.
func (r *InMemoryRefreshTokenRepository) Revoke(_ context.Context, tokenValue string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[tokenValue]
	if !ok {
		return nil // not found, consider already revoked
	}

	now := time.Now()
	token.RevokedAt = &now

	return nil
}

// RevokeAllForUser revokes all refresh tokens for a user.
func (r *InMemoryRefreshTokenRepository) RevokeAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, tokenValue := range r.byUser[userID] {
		if token, ok := r.tokens[tokenValue]; ok {
			token.RevokedAt = &now
		}
	}

	return nil
}
