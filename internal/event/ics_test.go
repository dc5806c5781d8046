package event

import (
	"strings"
	"testing"
	"unicode/utf8"
)

// TestICS_TimedEvent verifies a timed event renders a two-hour window.
func TestICS_TimedEvent(t *testing.T) {
	e := Event{
		ID:       "ev1",
		Title:    "March Meetup",
		Date:     "2026-03-14",
		Time:     "7:00 PM",
		Location: "Main Street Library",
	}

	out := ICS(e)

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		"UID:ev1@turnpage",
		"DTSTART:20260314T190000Z",
		"DTEND:20260314T210000Z",
		"SUMMARY:March Meetup",
		"LOCATION:Main Street Library",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if !strings.Contains(out, "\r\n") {
		t.Error("lines must be CRLF-terminated")
	}
}

// TestICS_AllDayFallback verifies a missing or malformed time renders a
// date-only start.
func TestICS_AllDayFallback(t *testing.T) {
	tests := []struct {
		name string
		time string
	}{
		{"no time", ""},
		{"malformed time", "after lunch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ICS(Event{ID: "ev2", Title: "Book Swap", Date: "2026-03-14", Time: tt.time})
			if !strings.Contains(out, "DTSTART;VALUE=DATE:20260314") {
				t.Errorf("expected all-day DTSTART, got:\n%s", out)
			}
			if strings.Contains(out, "DTEND") {
				t.Error("all-day events should not carry DTEND")
			}
		})
	}
}

// TestICS_EscapesText verifies RFC 5545 reserved characters are escaped.
func TestICS_EscapesText(t *testing.T) {
	e := Event{
		ID:          "ev3",
		Title:       "Reading; Q&A, and more",
		Date:        "2026-03-14",
		Description: "Line one\nLine two",
	}

	out := ICS(e)
	if !strings.Contains(out, `SUMMARY:Reading\; Q&A\, and more`) {
		t.Errorf("reserved characters not escaped:\n%s", out)
	}
	if !strings.Contains(out, `Line one\nLine two`) {
		t.Errorf("newline not escaped:\n%s", out)
	}
}

// TestFoldLine verifies long content lines fold at 75 octets with a
// leading space on continuations.
func TestFoldLine(t *testing.T) {
	long := "DESCRIPTION:" + strings.Repeat("a", 200)
	folded := foldLine(long)

	for i, line := range strings.Split(folded, "\r\n") {
		if len(line) > 76 {
			t.Errorf("line %d exceeds fold limit: %d octets", i, len(line))
		}
		if i > 0 && !strings.HasPrefix(line, " ") {
			t.Errorf("continuation %d missing leading space", i)
		}
	}

	short := "SUMMARY:ok"
	if foldLine(short) != short {
		t.Error("short lines must pass through unchanged")
	}
}

// TestFoldLine_RuneBoundary verifies folds never split a multi-byte
// UTF-8 character.
func TestFoldLine_RuneBoundary(t *testing.T) {
	long := "SUMMARY:" + strings.Repeat("é", 120)
	folded := foldLine(long)

	for i, line := range strings.Split(folded, "\r\n") {
		content := strings.TrimPrefix(line, " ")
		if !utf8.ValidString(content) {
			t.Errorf("line %d splits a rune: %q", i, line)
		}
		if len(line) > 76 {
			t.Errorf("line %d exceeds fold limit: %d octets", i, len(line))
		}
	}
	if strings.ReplaceAll(strings.ReplaceAll(folded, "\r\n ", ""), "\r\n", "") != long {
		t.Error("unfolding must reproduce the original line")
	}
}

// TestSummaryLine exercises the status and venue labels.
func TestSummaryLine(t *testing.T) {
	e := Event{Title: "Meetup", IsToday: true, IsOnline: true}
	if got := SummaryLine(e); got != "Meetup (today, online)" {
		t.Errorf("SummaryLine = %q", got)
	}

	e = Event{Title: "Meetup", IsPast: true}
	if got := SummaryLine(e); got != "Meetup (past, in-person)" {
		t.Errorf("SummaryLine = %q", got)
	}
}
