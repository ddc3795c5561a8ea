package calendar

import (
	"sort"
	"time"

	"agenda/internal/classify"
	"agenda/internal/model"
)

// DefaultTypeLabel is shown when an event has no type.
const DefaultTypeLabel = "Evento"

// Entry is one rendered row of the list view.
type Entry struct {
	Name         string            `json:"name"`
	DateLabel    string            `json:"date"`
	Start        *time.Time        `json:"start,omitempty"`
	End          *time.Time        `json:"end,omitempty"`
	Category     classify.Category `json:"category"`
	Color        string            `json:"color"`
	TypeLabel    string            `json:"type"`
	Organization string            `json:"organization"`
}

// SortByStart returns a copy of events ordered by start date. The sort is
// stable; events without a start date go last in their original order.
func SortByStart(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.HasStart() || !b.HasStart() {
			return a.HasStart() && !b.HasStart()
		}
		return a.Start.Before(b.Start)
	})
	return out
}

// MonthEvents returns the events starting in (year, month), sorted.
func MonthEvents(events []model.Event, year int, month time.Month) []model.Event {
	return SortByStart(Filter{Year: year, Month: month}.Apply(events))
}

// Entries renders events in their given order.
func Entries(events []model.Event) []Entry {
	out := make([]Entry, 0, len(events))
	for _, ev := range events {
		out = append(out, NewEntry(ev))
	}
	return out
}

// NewEntry renders a single event.
func NewEntry(ev model.Event) Entry {
	cl := classify.Classify(ev.Type)
	e := Entry{
		Name:         ev.Name,
		DateLabel:    FormatRange(ev),
		Category:     cl.Category,
		Color:        cl.Color,
		TypeLabel:    ev.Type,
		Organization: ev.Organization,
	}
	if e.TypeLabel == "" {
		e.TypeLabel = DefaultTypeLabel
	}
	if ev.HasStart() {
		s := ev.Start
		e.Start = &s
	}
	if ev.HasEnd() {
		end := ev.End
		e.End = &end
	}
	return e
}

// Truncate shortens names for grid chips: anything longer than 15 runes is
// cut to 12 runes plus an ellipsis.
func Truncate(name string) string {
	r := []rune(name)
	if len(r) > 15 {
		return string(r[:12]) + "..."
	}
	return name
}

// Summary holds dashboard counters.
type Summary struct {
	Total      int                       `json:"total"`
	ByCategory map[classify.Category]int `json:"by_category"`
}

// Summarize counts events per category. Every category is present in the
// map, possibly with zero.
func Summarize(events []model.Event) Summary {
	s := Summary{Total: len(events), ByCategory: map[classify.Category]int{}}
	for _, c := range classify.Categories() {
		s.ByCategory[c.Category] = 0
	}
	for _, ev := range events {
		s.ByCategory[classify.Classify(ev.Type).Category]++
	}
	return s
}
