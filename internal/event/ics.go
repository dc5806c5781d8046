package event

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// defaultDuration is assumed when an event has no end time on record.
const defaultDuration = 2 * time.Hour

// ICS renders a single event as an RFC 5545 calendar file for the
// "add to calendar" export. The event's time-of-day string is parsed
// best-effort; a missing or malformed time yields an all-day event.
func ICS(e Event) string {
	var sb strings.Builder
	write := func(line string) {
		sb.WriteString(foldLine(line))
		sb.WriteString("\r\n")
	}

	write("BEGIN:VCALENDAR")
	write("VERSION:2.0")
	write("PRODID:-//turnpage//book club//EN")
	write("BEGIN:VEVENT")
	write("UID:" + e.ID + "@turnpage")
	write("DTSTAMP:" + time.Now().UTC().Format("20060102T150405Z"))

	start, hasTime := startTime(e)
	if hasTime {
		write("DTSTART:" + start.UTC().Format("20060102T150405Z"))
		write("DTEND:" + start.Add(defaultDuration).UTC().Format("20060102T150405Z"))
	} else {
		write("DTSTART;VALUE=DATE:" + start.Format("20060102"))
	}

	write("SUMMARY:" + escapeText(e.Title))
	if e.Location != "" {
		write("LOCATION:" + escapeText(e.Location))
	}
	if e.Description != "" {
		write("DESCRIPTION:" + escapeText(e.Description))
	}
	if e.Link != "" {
		write("URL:" + e.Link)
	}
	write("END:VEVENT")
	write("END:VCALENDAR")
	return sb.String()
}

// startTime combines the event date with its time-of-day string. The
// second return value reports whether a usable time-of-day was present.
func startTime(e Event) (time.Time, bool) {
	day := ParseDate(e.Date)
	if day.IsZero() {
		return time.Now().UTC().Truncate(24 * time.Hour), false
	}
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"} {
		if tod, err := time.Parse(layout, strings.TrimSpace(e.Time)); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(),
				tod.Hour(), tod.Minute(), 0, 0, time.UTC), true
		}
	}
	return day, false
}

// escapeText escapes characters reserved by RFC 5545 text values.
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(s)
}

// foldLine folds content lines longer than 75 octets per RFC 5545,
// keeping multi-byte UTF-8 sequences intact across folds.
func foldLine(line string) string {
	const limit = 75
	if len(line) <= limit {
		return line
	}
	var sb strings.Builder
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 0 {
			cut = limit
		}
		sb.WriteString(line[:cut])
		sb.WriteString("\r\n ")
		line = line[cut:]
	}
	sb.WriteString(line)
	return sb.String()
}

// SummaryLine is a short one-line description used by handlers for
// logging. Kept here so the format stays beside the model.
func SummaryLine(e Event) string {
	status := "upcoming"
	if e.IsToday {
		status = "today"
	} else if e.IsPast {
		status = "past"
	}
	venue := "in-person"
	if e.IsOnline {
		venue = "online"
	}
	return fmt.Sprintf("%s (%s, %s)", e.Title, status, venue)
}
