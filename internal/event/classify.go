package event

import (
	"strings"
	"time"
)

// onlineKeywords classify a location string as a virtual venue. Matching is
// case-insensitive substring, so URLs and platform names both hit.
var onlineKeywords = []string{
	"zoom",
	"online",
	"virtual",
	"google meet",
	"teams",
	"webex",
	"http",
	"www.",
}

// IsOnline reports whether location describes a virtual venue.
func IsOnline(location string) bool {
	loc := strings.ToLower(location)
	for _, kw := range onlineKeywords {
		if strings.Contains(loc, kw) {
			return true
		}
	}
	return false
}

// ParseDate parses an event's ISO date string. An unparseable date returns
// the zero time; callers treat such events as past so malformed records
// sink to the bottom of the schedule instead of breaking it.
func ParseDate(date string) time.Time {
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		return t
	}
	return time.Time{}
}

// IsHappeningToday reports whether date falls on the same calendar day as
// now (both truncated to day, UTC).
func IsHappeningToday(date string, now time.Time) bool {
	t := ParseDate(date)
	if t.IsZero() {
		return false
	}
	ty, tm, td := t.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return ty == ny && tm == nm && td == nd
}

// IsPast reports whether date is strictly before now. An event happening
// today is never past; today takes precedence by construction so the two
// states stay mutually exclusive.
func IsPast(date string, now time.Time) bool {
	if IsHappeningToday(date, now) {
		return false
	}
	t := ParseDate(date)
	if t.IsZero() {
		return true
	}
	return t.Before(now)
}

// Classify derives the IsPast/IsToday/IsOnline fields against now.
func Classify(e Event, now time.Time) Event {
	e.IsToday = IsHappeningToday(e.Date, now)
	e.IsPast = IsPast(e.Date, now)
	e.IsOnline = IsOnline(e.Location)
	return e
}

// ClassifyAll derives classification for every event against a single
// clock reading.
func ClassifyAll(events []Event, now time.Time) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		out[i] = Classify(e, now)
	}
	return out
}
