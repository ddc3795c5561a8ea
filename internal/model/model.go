package model

import "time"

// Event is one row of the events spreadsheet after normalization.
//
// Start and End are calendar dates stored as 00:00 UTC. The zero value
// means the cell was empty or could not be parsed.
type Event struct {
	// Row is the 1-based data row (header excluded) in the source sheet.
	Row int

	Name         string
	Type         string
	Organization string

	Start time.Time
	End   time.Time
}

// HasStart reports whether the event has a usable start date.
func (e Event) HasStart() bool { return !e.Start.IsZero() }

// HasEnd reports whether the event has a usable end date.
func (e Event) HasEnd() bool { return !e.End.IsZero() }

// LastDay returns the final day of the event's active range. Events without
// an end date are single-day events on Start.
func (e Event) LastDay() time.Time {
	if e.HasEnd() {
		return e.End
	}
	return e.Start
}

// ActiveOn reports whether the event occurs on the given calendar day.
// The range is inclusive on both ends; an event without a start date is
// never active.
func (e Event) ActiveOn(day time.Time) bool {
	if !e.HasStart() {
		return false
	}
	d := DateOf(day)
	return !d.Before(e.Start) && !d.After(e.LastDay())
}

// IsBlank reports whether every field of the row is empty after coercion.
func (e Event) IsBlank() bool {
	return e.Name == "" && e.Type == "" && e.Organization == "" &&
		!e.HasStart() && !e.HasEnd()
}

// Table is one load of the spreadsheet. It is never mutated after it is
// built; callers that need to reorder or filter must copy Events first.
type Table struct {
	Events    []Event
	FetchedAt time.Time
	// Origin describes where the table came from (redacted URL or sheet ID).
	Origin string
}

// Len returns the number of events in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Events)
}

// Snapshot returns a copy of the events slice that is safe to reorder.
func (t *Table) Snapshot() []Event {
	if t == nil {
		return nil
	}
	out := make([]Event, len(t.Events))
	copy(out, t.Events)
	return out
}

// Date builds a calendar date in the canonical representation.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar date, keeping the wall-clock
// year/month/day of t's own location.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return Date(y, m, d)
}
