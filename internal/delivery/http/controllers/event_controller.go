package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gatherly/internal/delivery/http/helpers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/domain"
)

// ImagePayload is the optional image metadata on create/update requests.
// Only metadata is kept; file contents are never stored.
type ImagePayload struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// EventPayload is the request body for POST /events and PUT /events/{eventID}.
type EventPayload struct {
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	Time         string        `json:"time"`
	Location     string        `json:"location"`
	Description  string        `json:"description"`
	Type         string        `json:"type"`
	MaxAttendees int           `json:"max_attendees"`
	Image        *ImagePayload `json:"image"`
}

// Validate implements Validator. All field-level checks live here; the
// event store itself does not validate.
func (p EventPayload) Validate() []string {
	var errs []string
	if strings.TrimSpace(p.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(p.Date) == "" {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(p.Time) == "" {
		errs = append(errs, "time is required")
	}
	if strings.TrimSpace(p.Location) == "" {
		errs = append(errs, "location is required")
	}
	if !domain.EventType(p.Type).Valid() {
		errs = append(errs, "type must be one of: conference, seminar, workshop, party, concert")
	}
	if p.MaxAttendees < 0 {
		errs = append(errs, "max_attendees must not be negative")
	}
	if p.Image != nil && p.Image.Size < 0 {
		errs = append(errs, "image size must not be negative")
	}
	return errs
}

func (p EventPayload) toDraft(createdBy int64) (*domain.Event, error) {
	event, err := domain.NewEvent(
		strings.TrimSpace(p.Title),
		strings.TrimSpace(p.Date),
		strings.TrimSpace(p.Time),
		strings.TrimSpace(p.Location),
		strings.TrimSpace(p.Description),
		domain.EventType(p.Type),
		p.MaxAttendees,
		createdBy,
	)
	if err != nil {
		return nil, err
	}
	if p.Image != nil {
		event.Image = &domain.ImageMeta{
			Name:        p.Image.Name,
			Size:        p.Image.Size,
			ContentType: p.Image.ContentType,
		}
	}
	return event, nil
}

// EventSuccessResponse is the success response envelope for single-event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success response envelope for event list endpoints.
type EventListSuccessResponse struct {
	Data  []domain.Event    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger   *slog.Logger
	Events   domain.EventStore
	Notifier domain.Notifier
}

func NewEventController(logger *slog.Logger, events domain.EventStore, notifier domain.Notifier) *EventController {
	return &EventController{
		Logger:   logger,
		Events:   events,
		Notifier: notifier,
	}
}

func eventIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("eventID")
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return 0, false
	}
	return id, true
}

// others returns the attendees except the given identity.
func others(attendees []int64, identityID int64) []int64 {
	out := make([]int64, 0, len(attendees))
	for _, id := range attendees {
		if id != identityID {
			out = append(out, id)
		}
	}
	return out
}

// ListEvents godoc
// @Summary List events
// @Description Returns all events, optionally narrowed by filters. Filters combine with AND; omitted filters are no-ops.
// @Tags events
// @Produce json
// @Param min_date query string false "Keep events dated on or after this ISO date (2006-01-02)"
// @Param location query string false "Case-insensitive location substring"
// @Param type query string false "Exact event type" Enums(conference, seminar, workshop, party, concert)
// @Success 200 {object} EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	criteria := domain.FilterCriteria{
		MinDate:  strings.TrimSpace(query.Get("min_date")),
		Location: strings.TrimSpace(query.Get("location")),
		Type:     domain.EventType(strings.TrimSpace(query.Get("type"))),
	}
	if criteria.Type != "" && !criteria.Type.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown event type")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Events.Filter(criteria))
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event owned by the authenticated identity. ID and attendee list are server-assigned.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EventPayload true "Event fields"
// @Success 201 {object} EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req EventPayload
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	draft, err := req.toDraft(identityID)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	created, err := c.Events.Create(r.Context(), *draft)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the event's fields. Only the creator may update; the ID, creator, and attendee list are preserved. Attendees are notified.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Param body body EventPayload true "Event fields"
// @Success 200 {object} EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req EventPayload
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	existing, err := c.Events.Get(eventID)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	if existing.CreatedBy != identityID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the creator may update this event")
		return
	}
	draft, err := req.toDraft(existing.CreatedBy)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	draft.ID = existing.ID
	draft.Attendees = existing.Attendees

	updated, err := c.Events.Update(r.Context(), *draft)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	c.Notifier.Notify(r.Context(), others(updated.Attendees, identityID),
		fmt.Sprintf("%q was updated", updated.Title))
	helpers.WriteJSONSuccess(w, http.StatusOK, updated)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Removes the event. Only the creator may delete. Attendees are notified. Deleting an already-deleted event returns 404.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	existing, err := c.Events.Get(eventID)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	if existing.CreatedBy != identityID {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the creator may delete this event")
		return
	}
	if err := c.Events.Delete(r.Context(), eventID); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	c.Notifier.Notify(r.Context(), others(existing.Attendees, identityID),
		fmt.Sprintf("%q was cancelled", existing.Title))
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}

// ToggleRSVP godoc
// @Summary Toggle an RSVP
// @Description RSVPs the authenticated identity to the event, or cancels the RSVP if already attending. RSVPing to a full event returns 409.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID"
// @Success 200 {object} EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (event is full)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvp [post]
func (c *EventController) ToggleRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event, err := c.Events.ToggleRSVP(r.Context(), eventID, identityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		if errors.Is(err, domain.ErrEventFull) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "event is full")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// MyRSVPs godoc
// @Summary List events the current identity RSVPed to
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /me/events [get]
func (c *EventController) MyRSVPs(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Events.UserRSVPs(identityID))
}

// MyStats godoc
// @Summary Get created/RSVP counts for the current identity
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains created_count and rsvp_count"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /me/stats [get]
func (c *EventController) MyStats(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Events.UserStats(identityID))
}

// MyNotifications godoc
// @Summary List notifications for the current identity
// @Tags me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of notifications"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /me/notifications [get]
func (c *EventController) MyNotifications(w http.ResponseWriter, r *http.Request) {
	identityID, ok := middleware.IdentityIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, c.Notifier.ListByUser(identityID))
}
