// Package calendar bins events into a month grid and prepares the list view.
package calendar

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"agenda/internal/model"
)

// MaxPerDay is the number of events rendered inside a day cell before the
// "+N mais" counter takes over.
const MaxPerDay = 3

// Options controls grid layout.
type Options struct {
	// WeekStart is the weekday of the first column (time.Sunday or time.Monday).
	WeekStart time.Weekday
	// Today, if non-zero, marks the matching cell.
	Today time.Time
}

// Cell is one slot of the month grid. Day is 0 for the placeholders that
// pad the first and last week.
type Cell struct {
	Day    int
	Date   time.Time
	Today  bool
	Events []model.Event
}

// Blank reports whether the cell is a placeholder outside the month.
func (c Cell) Blank() bool { return c.Day == 0 }

// Shown returns the events rendered inside the cell.
func (c Cell) Shown() []model.Event {
	if len(c.Events) > MaxPerDay {
		return c.Events[:MaxPerDay]
	}
	return c.Events
}

// More returns how many events did not fit in the cell.
func (c Cell) More() int {
	if n := len(c.Events) - MaxPerDay; n > 0 {
		return n
	}
	return 0
}

// Month is a week-major grid of the target month.
type Month struct {
	Year      int
	Month     time.Month
	WeekStart time.Weekday
	Weeks     [][7]Cell
}

// Weekdays returns the column headers in grid order.
func (m Month) Weekdays() []string {
	out := make([]string, 7)
	for i := range out {
		out[i] = WeekdayLabel(time.Weekday((int(m.WeekStart) + i) % 7))
	}
	return out
}

// Day returns the cell for a day of the month, or false if out of range.
func (m Month) Day(day int) (Cell, bool) {
	for _, w := range m.Weeks {
		for _, c := range w {
			if c.Day == day && day != 0 {
				return c, true
			}
		}
	}
	return Cell{}, false
}

// Build bins events into the grid of (year, month). Each real day holds the
// events active on it, ordered by start date; the input slice is not
// modified.
func Build(events []model.Event, year int, month time.Month, opts Options) Month {
	if opts.WeekStart != time.Monday {
		opts.WeekStart = time.Sunday
	}
	today := model.DateOf(opts.Today)
	year, month = Shift(year, month, 0)

	sorted := SortByStart(events)
	days := monthDays(year, month)

	offset := (int(days[0].Weekday()) - int(opts.WeekStart) + 7) % 7
	total := offset + len(days)
	weeks := make([][7]Cell, (total+6)/7)

	for i, d := range days {
		slot := offset + i
		cell := Cell{
			Day:   d.Day(),
			Date:  d,
			Today: !today.IsZero() && d.Equal(today),
		}
		for _, ev := range sorted {
			if ev.ActiveOn(d) {
				cell.Events = append(cell.Events, ev)
			}
		}
		weeks[slot/7][slot%7] = cell
	}

	return Month{
		Year:      year,
		Month:     month,
		WeekStart: opts.WeekStart,
		Weeks:     weeks,
	}
}

// monthDays enumerates the calendar dates of a month. A daily rule between
// two valid dates always validates, so an error is a programming bug.
func monthDays(year int, month time.Month) []time.Time {
	first := model.Date(year, month, 1)
	last := first.AddDate(0, 1, -1)

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: first,
		Until:   last,
	})
	if err != nil {
		panic(fmt.Sprintf("calendar: daily rule for %d-%02d: %v", year, month, err))
	}
	return r.All()
}
