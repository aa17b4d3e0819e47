package domain

import "strings"

// FilterCriteria narrows an event listing. Zero-valued fields are no-ops,
// set fields combine with AND, and the order they apply in does not change
// the result. Criteria are transient and never persisted.
type FilterCriteria struct {
	// MinDate keeps events whose date is on or after this ISO date.
	// ISO dates compare correctly as strings.
	MinDate string
	// Location keeps events whose location contains this substring,
	// case-insensitively.
	Location string
	// Type keeps events of exactly this type.
	Type EventType
}

// Empty reports whether no criterion is set.
func (c FilterCriteria) Empty() bool {
	return c.MinDate == "" && c.Location == "" && c.Type == ""
}

// Matches reports whether the event passes every set criterion.
func (c FilterCriteria) Matches(e *Event) bool {
	if c.MinDate != "" && e.Date < c.MinDate {
		return false
	}
	if c.Location != "" && !strings.Contains(strings.ToLower(e.Location), strings.ToLower(c.Location)) {
		return false
	}
	if c.Type != "" && e.Type != c.Type {
		return false
	}
	return true
}

// FilterEvents projects the event list through the criteria, preserving
// order. It recomputes from scratch on every call; at the expected scale of
// tens to hundreds of events there is nothing worth caching.
func FilterEvents(events []Event, criteria FilterCriteria) []Event {
	filtered := make([]Event, 0, len(events))
	for i := range events {
		if criteria.Matches(&events[i]) {
			filtered = append(filtered, events[i])
		}
	}
	return filtered
}
