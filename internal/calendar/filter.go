package calendar

import (
	"sort"
	"strings"
	"time"

	"agenda/internal/model"
)

// All is the selector value that disables a text filter.
const All = "All"

// Filter narrows the event table before binning or listing. Zero values
// disable each criterion.
type Filter struct {
	Type         string
	Organization string
	// Month and Year match against the event's start date.
	Month time.Month
	Year  int
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return textSet(f.Type) || textSet(f.Organization) || f.Month != 0 || f.Year != 0
}

// Match reports whether ev passes every set criterion. Events without a
// start date fail an active month or year criterion.
func (f Filter) Match(ev model.Event) bool {
	if textSet(f.Type) && ev.Type != strings.TrimSpace(f.Type) {
		return false
	}
	if textSet(f.Organization) && ev.Organization != strings.TrimSpace(f.Organization) {
		return false
	}
	if f.Month != 0 && (!ev.HasStart() || ev.Start.Month() != f.Month) {
		return false
	}
	if f.Year != 0 && (!ev.HasStart() || ev.Start.Year() != f.Year) {
		return false
	}
	return true
}

// Apply returns the events that match f, preserving input order.
func (f Filter) Apply(events []model.Event) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if f.Match(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func textSet(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != All
}

// Choices lists the distinct values available to the filter selectors.
type Choices struct {
	Types         []string `json:"types"`
	Organizations []string `json:"organizations"`
}

// FilterChoices collects the sorted distinct non-empty types and organizations.
func FilterChoices(events []model.Event) Choices {
	types := map[string]struct{}{}
	orgs := map[string]struct{}{}
	for _, ev := range events {
		if ev.Type != "" {
			types[ev.Type] = struct{}{}
		}
		if ev.Organization != "" {
			orgs[ev.Organization] = struct{}{}
		}
	}
	return Choices{Types: sortedKeys(types), Organizations: sortedKeys(orgs)}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
