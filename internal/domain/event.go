package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for event operations.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrEventFull = errors.New("event is full")
)

// EventType classifies an event.
type EventType string

// Known event types.
const (
	TypeConference EventType = "conference"
	TypeSeminar    EventType = "seminar"
	TypeWorkshop   EventType = "workshop"
	TypeParty      EventType = "party"
	TypeConcert    EventType = "concert"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case TypeConference, TypeSeminar, TypeWorkshop, TypeParty, TypeConcert:
		return true
	}
	return false
}

// ImageMeta describes an attached event image. Only the metadata is
// persisted; the file contents never survive a restart.
// swagger:model ImageMeta
type ImageMeta struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// Event represents a user-created gathering with an RSVP list.
// Attendees holds identity IDs in RSVP order, without duplicates.
// swagger:model Event
type Event struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Date         string     `json:"date"` // ISO calendar date, "2006-01-02"
	Time         string     `json:"time"`
	Location     string     `json:"location"`
	Description  string     `json:"description,omitempty"`
	Type         EventType  `json:"type"`
	MaxAttendees int        `json:"max_attendees"` // 0 = unlimited
	CreatedBy    int64      `json:"created_by"`
	Attendees    []int64    `json:"attendees"`
	Image        *ImageMeta `json:"image"`
}

// NewEvent returns an Event draft with the given fields after checking the
// type and attendee-cap invariants. ID and Attendees are set by the event
// store on create.
func NewEvent(title, date, eventTime, location, description string, eventType EventType, maxAttendees int, createdBy int64) (*Event, error) {
	if !eventType.Valid() {
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
	if maxAttendees < 0 {
		return nil, fmt.Errorf("max_attendees must not be negative, got %d", maxAttendees)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return &Event{
		Title:        title,
		Date:         date,
		Time:         eventTime,
		Location:     location,
		Description:  description,
		Type:         eventType,
		MaxAttendees: maxAttendees,
		CreatedBy:    createdBy,
	}, nil
}

// IsAttending reports whether the identity has RSVPed to the event.
func (e *Event) IsAttending(identityID int64) bool {
	for _, id := range e.Attendees {
		if id == identityID {
			return true
		}
	}
	return false
}

// Full reports whether the attendee cap is reached. A cap of 0 means
// unlimited.
func (e *Event) Full() bool {
	return e.MaxAttendees > 0 && len(e.Attendees) >= e.MaxAttendees
}

// UserStats holds per-identity counts derived from the event list.
// swagger:model UserStats
type UserStats struct {
	CreatedCount int `json:"created_count"`
	RSVPCount    int `json:"rsvp_count"`
}

// EventStore owns the authoritative event list. Mutations persist the full
// list to key-value storage synchronously after the in-memory change.
type EventStore interface {
	// Create assigns a creation-time-derived unique ID and an empty
	// attendee list, then appends the event.
	Create(ctx context.Context, draft Event) (*Event, error)
	// Update replaces the stored event with the same ID. Unknown IDs
	// return ErrNotFound.
	Update(ctx context.Context, event Event) (*Event, error)
	// Delete removes the event with the given ID. Absent IDs are a no-op.
	Delete(ctx context.Context, id int64) error
	// ToggleRSVP cancels the identity's RSVP if present, otherwise adds
	// it. Adding to a full event returns ErrEventFull; cancellation is
	// always allowed. Toggling twice restores the original attendee set.
	ToggleRSVP(ctx context.Context, eventID, identityID int64) (*Event, error)
	// Get returns a copy of the event with the given ID, or ErrNotFound.
	Get(id int64) (*Event, error)
	// List returns a copy of all events in store order.
	List() []Event
	// Filter returns the events matching the criteria, in store order.
	Filter(criteria FilterCriteria) []Event
	// UserStats returns created/RSVP counts for the identity.
	UserStats(identityID int64) UserStats
	// UserRSVPs returns the events the identity RSVPed to, in store order.
	UserRSVPs(identityID int64) []Event
}
