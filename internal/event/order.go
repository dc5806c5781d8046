package event

import (
	"sort"
	"time"
)

// SortSchedule orders events for display with a single deterministic total
// order:
//
//  1. events happening today sort before all others
//  2. among the rest, upcoming sorts before past
//  3. within today, ties break by title (lexicographic)
//  4. within upcoming, ascending by date (soonest first)
//  5. within past, descending by date (most recent first)
//
// Same-day upcoming events also fall back to title order so the result is
// stable regardless of input order. Events must already be classified
// against the same clock reading used here.
func SortSchedule(events []Event, now time.Time) []Event {
	out := ClassifyAll(events, now)
	sort.SliceStable(out, func(i, j int) bool {
		return scheduleLess(out[i], out[j])
	})
	return out
}

// scheduleLess is the five-rule comparator.
func scheduleLess(a, b Event) bool {
	// Rule 1: today first.
	if a.IsToday != b.IsToday {
		return a.IsToday
	}
	if a.IsToday {
		// Rule 3: title order inside today.
		return a.Title < b.Title
	}

	// Rule 2: upcoming before past.
	if a.IsPast != b.IsPast {
		return !a.IsPast
	}

	da, db := ParseDate(a.Date), ParseDate(b.Date)
	if a.IsPast {
		// Rule 5: most recent past first.
		if !da.Equal(db) {
			return da.After(db)
		}
		return a.Title < b.Title
	}

	// Rule 4: soonest upcoming first.
	if !da.Equal(db) {
		return da.Before(db)
	}
	return a.Title < b.Title
}
