// Package auth holds account registration and password verification.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"mahfaza/internal/store"
	"mahfaza/pkg/types"
)

type Credentials struct {
	users store.UserStore
}

func NewCredentials(users store.UserStore) *Credentials {
	return &Credentials{users: users}
}

// Register creates an account and returns its id. Username uniqueness is
// enforced by the store's constraint so there is no check-then-insert race.
func (c *Credentials) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, types.NewValidationError("username", "must not be empty")
	}
	if password == "" {
		return 0, types.NewValidationError("password", "must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, types.NewValidationError("password", "too long")
		}
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{Username: username, PasswordHash: string(hash)}
	if err := c.users.Create(ctx, user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// wrong passwords both come back as types.ErrInvalidCredentials so the
// login form cannot be used to enumerate accounts.
func (c *Credentials) Authenticate(ctx context.Context, username, password string) (*types.User, error) {
	user, err := c.users.ByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, types.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("fetch user for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, types.ErrInvalidCredentials
	}

	return user, nil
}
