package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turnpage/turnpage/internal/event"
)

// EventHandlers holds dependencies for event HTTP handlers.
type EventHandlers struct {
	events event.Repository
	now    func() time.Time
}

// NewEventHandlers creates a new EventHandlers instance.
func NewEventHandlers(events event.Repository) *EventHandlers {
	return &EventHandlers{
		events: events,
		now:    time.Now,
	}
}

// ListEvents handles GET /events - the full schedule, classified and
// ordered: today's events first, then upcoming soonest-first, then past
// events most-recent-first.
func (h *EventHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list events", "error", err)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load events")
		return
	}

	writeJSON(w, r, http.StatusOK, event.SortSchedule(events, h.now()))
}

// GetEvent handles GET /events/{id} - one event with its classification
// flags populated.
func (h *EventHandlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.events.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get event", "error", err, "event_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load event")
		return
	}

	writeJSON(w, r, http.StatusOK, event.Classify(*e, h.now()))
}

// Calendar handles GET /events/{id}/calendar.ics - the event as an
// iCalendar file for download.
func (h *EventHandlers) Calendar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	e, err := h.events.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			fail(w, r, http.StatusNotFound, ErrCodeNotFound, "Event not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get event", "error", err, "event_id", id)
		fail(w, r, http.StatusBadGateway, ErrCodeUpstream, "Failed to load event")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "event-"+id+".ics"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(event.ICS(*e))); err != nil {
		slog.ErrorContext(r.Context(), "failed to write calendar response", "error", err)
	}
}
