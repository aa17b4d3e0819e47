package domain

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is returned when the auth backend rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Identity represents the authenticated user held by the session store.
// swagger:model Identity
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// SignUpForm carries the fields submitted on signup. Confirmation-password
// checks happen in the delivery layer; a form reaching the authenticator is
// assumed well-formed.
type SignUpForm struct {
	Name     string
	Email    string
	Password string
}

// Authenticator models the remote auth backend. Both calls block for the
// backend's latency and honor context cancellation.
type Authenticator interface {
	// Login verifies the credentials and returns the matching identity,
	// or ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*Identity, error)
	// SignUp registers a new account and returns the identity with a
	// freshly assigned ID. The simulated backend always succeeds.
	SignUp(ctx context.Context, form SignUpForm) (*Identity, error)
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated identity.
type TokenIssuer interface {
	Issue(identity *Identity) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated identity ID.
type TokenVerifier interface {
	Verify(token string) (identityID int64, err error)
}

// SessionStore holds at most one logged-in identity and mirrors it to
// key-value storage under a fixed key.
type SessionStore interface {
	// Login sets the current identity and persists it, overwriting any
	// previously stored identity. The identity shape is not validated.
	Login(ctx context.Context, identity Identity) error
	// Logout clears the current identity and removes the persisted key.
	// Calling it when already logged out is a no-op.
	Logout(ctx context.Context) error
	// Current returns the active identity, or nil when logged out.
	Current() *Identity
}
