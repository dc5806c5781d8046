// Package event provides event models, derived classification (online vs
// in-person, past vs upcoming vs happening-today), schedule ordering, and
// calendar export.
package event

import (
	"github.com/turnpage/turnpage/internal/cms"
)

// Event is a single club event projected from the Events collection.
// IsPast, IsToday, and IsOnline are derived at read time, not stored; they
// are recomputed wherever the event crosses an API boundary so the remote
// record never goes stale.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"` // ISO date, e.g. 2026-03-14
	Time        string   `json:"time,omitempty"`
	Location    string   `json:"location"`
	Moderators  []string `json:"moderators,omitempty"`
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Image       string   `json:"image,omitempty"`
	Link        string   `json:"link,omitempty"`
	BookIDs     []string `json:"book_ids,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	IsPast   bool `json:"is_past"`
	IsToday  bool `json:"is_today"`
	IsOnline bool `json:"is_online"`
}

// FromRecord decodes a CMS record into an Event with defensive defaulting.
// Classification fields are left for Classify so every call site derives
// them against the same clock.
func FromRecord(rec cms.Record) Event {
	return Event{
		ID:          rec.ID(),
		Title:       rec.Str("title"),
		Date:        rec.Str("date"),
		Time:        rec.Str("time"),
		Location:    rec.Str("location"),
		Moderators:  rec.Strings("moderators"),
		Type:        rec.Str("type"),
		Description: rec.Str("description"),
		Image:       rec.Str("image"),
		Link:        rec.Str("link"),
		BookIDs:     rec.Strings("bookIds"),
		Tags:        rec.Strings("tags"),
	}
}
