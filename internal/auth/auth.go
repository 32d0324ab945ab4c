// Package auth verifies bearer access tokens and maps them to users. Token
// issuance lives with the login flow elsewhere.
package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"wishlist/internal/apperr"
	"wishlist/internal/db"
	"wishlist/internal/models"
)

// ErrInvalidToken is returned by verifiers for any token they do not accept.
var ErrInvalidToken = errors.New("invalid token")

// Identity is what a verified token says about its bearer. Exactly one of
// UserID and Email is set.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Verifier checks a raw token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// UserStore looks users up.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Authenticator tries each verifier in order and loads the user.
type Authenticator struct {
	users     UserStore
	verifiers []Verifier
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(users UserStore, verifiers ...Verifier) *Authenticator {
	return &Authenticator{users: users, verifiers: verifiers}
}

// Authenticate returns the user a token belongs to, or an Unauthorized error.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apperr.Unauthorized("Not authenticated")
	}

	var id *Identity
	for _, v := range a.verifiers {
		got, err := v.Verify(ctx, token)
		if err == nil {
			id = got
			break
		}
	}
	if id == nil {
		return nil, apperr.Unauthorized("Invalid or expired token")
	}

	var (
		user *models.User
		err  error
	)
	if id.UserID != uuid.Nil {
		user, err = a.users.GetUserByID(ctx, id.UserID)
	} else {
		user, err = a.users.GetUserByEmail(ctx, id.Email)
	}
	if errors.Is(err, db.ErrUserNotFound) {
		return nil, apperr.Unauthorized("Not authenticated")
	}
	if err != nil {
		slog.Error("failed to load authenticated user", "error", err)
		return nil, err
	}
	return user, nil
}
