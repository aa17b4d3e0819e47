// Package store holds the in-memory state owners. Both stores restore from
// key-value storage at construction and persist synchronously after every
// mutation, so there is nothing to flush on shutdown.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"gatherly/internal/domain"
	"gatherly/internal/repository/kv"
)

type sessionStore struct {
	mu      sync.RWMutex
	current *domain.Identity
	storage kv.Store
	logger  *slog.Logger
}

// NewSessionStore restores the persisted identity, if any, and returns the
// store. A missing or malformed value leaves the store logged out.
func NewSessionStore(ctx context.Context, storage kv.Store, logger *slog.Logger) domain.SessionStore {
	s := &sessionStore{storage: storage, logger: logger}
	raw, err := storage.Get(ctx, kv.UserKey)
	if err != nil {
		if err != kv.ErrKeyNotFound {
			logger.Warn("could not restore session", "err", err)
		}
		return s
	}
	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		logger.Warn("discarding malformed persisted identity", "err", err)
		return s
	}
	s.current = &identity
	return s
}

func (s *sessionStore) Login(ctx context.Context, identity domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, kv.UserKey, raw); err != nil {
		return err
	}
	s.current = &identity
	return nil
}

func (s *sessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	if err := s.storage.Delete(ctx, kv.UserKey); err != nil {
		return err
	}
	s.current = nil
	return nil
}

func (s *sessionStore) Current() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}
