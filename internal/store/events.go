package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gatherly/internal/domain"
	"gatherly/internal/repository/kv"
)

type eventStore struct {
	mu      sync.RWMutex
	events  []domain.Event
	lastID  int64
	storage kv.Store
	logger  *slog.Logger
}

// NewEventStore restores the persisted event list, if any, and returns the
// store. A missing or malformed value starts the store empty.
func NewEventStore(ctx context.Context, storage kv.Store, logger *slog.Logger) domain.EventStore {
	s := &eventStore{storage: storage, logger: logger}
	raw, err := storage.Get(ctx, kv.EventsKey)
	if err != nil {
		if err != kv.ErrKeyNotFound {
			logger.Warn("could not restore events", "err", err)
		}
		return s
	}
	var events []domain.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		logger.Warn("discarding malformed persisted events", "err", err)
		return s
	}
	s.events = events
	for i := range events {
		if events[i].ID > s.lastID {
			s.lastID = events[i].ID
		}
	}
	return s
}

// nextID derives an ID from the creation time. Same-millisecond creates get
// consecutive IDs so uniqueness holds for any call sequence.
func (s *eventStore) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// persist writes the full list back to storage. Called with the lock held;
// on failure the caller rolls the in-memory change back.
func (s *eventStore) persist(ctx context.Context) error {
	events := s.events
	if events == nil {
		events = []domain.Event{}
	}
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := s.storage.Set(ctx, kv.EventsKey, raw); err != nil {
		return fmt.Errorf("persist events: %w", err)
	}
	return nil
}

func (s *eventStore) Create(ctx context.Context, draft domain.Event) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.ID = s.nextID()
	draft.Attendees = []int64{}
	s.events = append(s.events, draft)
	if err := s.persist(ctx); err != nil {
		s.events = s.events[:len(s.events)-1]
		return nil, err
	}
	created := draft
	return &created, nil
}

func (s *eventStore) Update(ctx context.Context, event domain.Event) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID != event.ID {
			continue
		}
		previous := s.events[i]
		s.events[i] = event
		if err := s.persist(ctx); err != nil {
			s.events[i] = previous
			return nil, err
		}
		updated := event
		return &updated, nil
	}
	return nil, domain.ErrNotFound
}

func (s *eventStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID != id {
			continue
		}
		snapshot := append([]domain.Event{}, s.events...)
		s.events = append(s.events[:i], s.events[i+1:]...)
		if err := s.persist(ctx); err != nil {
			s.events = snapshot
			return err
		}
		return nil
	}
	// Absent ID: deleting twice is idempotent.
	return nil
}

func (s *eventStore) ToggleRSVP(ctx context.Context, eventID, identityID int64) (*domain.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID != eventID {
			continue
		}
		event := &s.events[i]
		previous := event.Attendees
		if event.IsAttending(identityID) {
			// Cancel: remove while keeping RSVP order for the rest.
			attendees := make([]int64, 0, len(previous)-1)
			for _, id := range previous {
				if id != identityID {
					attendees = append(attendees, id)
				}
			}
			event.Attendees = attendees
		} else {
			if event.Full() {
				return nil, domain.ErrEventFull
			}
			event.Attendees = append(append([]int64{}, previous...), identityID)
		}
		if err := s.persist(ctx); err != nil {
			event.Attendees = previous
			return nil, err
		}
		toggled := *event
		return &toggled, nil
	}
	return nil, domain.ErrNotFound
}

func (s *eventStore) Get(id int64) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.events {
		if s.events[i].ID == id {
			event := s.events[i]
			return &event, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *eventStore) List() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Event{}, s.events...)
}

func (s *eventStore) Filter(criteria domain.FilterCriteria) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FilterEvents(s.events, criteria)
}

func (s *eventStore) UserStats(identityID int64) domain.UserStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var stats domain.UserStats
	for i := range s.events {
		if s.events[i].CreatedBy == identityID {
			stats.CreatedCount++
		}
		if s.events[i].IsAttending(identityID) {
			stats.RSVPCount++
		}
	}
	return stats
}

func (s *eventStore) UserRSVPs(identityID int64) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rsvps := make([]domain.Event, 0)
	for i := range s.events {
		if s.events[i].IsAttending(identityID) {
			rsvps = append(rsvps, s.events[i])
		}
	}
	return rsvps
}
