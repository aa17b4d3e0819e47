package auth

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gatherly/internal/domain"
)

// SimulatedConfig configures the simulated auth backend.
type SimulatedConfig struct {
	// Username is the only accepted login name.
	Username string
	// Password is the only accepted password. It is bcrypt-hashed at
	// construction and the plaintext is discarded.
	Password string
	// Latency is how long each call blocks before resolving, imitating a
	// round-trip to a real backend.
	Latency time.Duration
}

type simulatedAuthenticator struct {
	username     string
	passwordHash []byte
	latency      time.Duration
}

// NewSimulated returns an Authenticator that accepts exactly one credential
// pair for login and accepts every signup, assigning a pseudo-random ID.
// There is no real backend behind it.
func NewSimulated(cfg SimulatedConfig) (domain.Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &simulatedAuthenticator{
		username:     cfg.Username,
		passwordHash: hash,
		latency:      cfg.Latency,
	}, nil
}

// wait is the suspend point standing in for the network round-trip.
func (a *simulatedAuthenticator) wait(ctx context.Context) error {
	if a.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (a *simulatedAuthenticator) Login(ctx context.Context, username, password string) (*domain.Identity, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	if username != a.username {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Identity{ID: 1, Name: username}, nil
}

func (a *simulatedAuthenticator) SignUp(ctx context.Context, form domain.SignUpForm) (*domain.Identity, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	return &domain.Identity{
		ID:    1 + rand.Int63n(1<<53),
		Name:  form.Name,
		Email: form.Email,
	}, nil
}
