// Package ics renders events as an iCalendar feed that calendar clients can
// subscribe to.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"agenda/internal/classify"
	appLog "agenda/internal/log"
	"agenda/internal/model"
)

const productID = "-//agenda//eventos//PT"

// colorProperty carries the category's hex color. COLOR itself only accepts
// CSS3 color names.
const colorProperty = "X-AGENDA-COLOR"

// Options controls feed-level properties.
type Options struct {
	// Name is published as X-WR-CALNAME.
	Name string
	// Stamp is written as DTSTAMP on every event; zero means time.Now.
	Stamp time.Time
}

// Build converts events into a calendar. Every dated event becomes one
// all-day VEVENT whose DTEND is the day after its last active day; events
// without a start date are skipped.
func Build(events []model.Event, opts Options) *ical.Calendar {
	stamp := opts.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	skipped := 0
	for _, ev := range events {
		if !ev.HasStart() || ev.LastDay().Before(ev.Start) {
			skipped++
			continue
		}
		class := classify.Classify(ev.Type)

		ve := cal.AddEvent(EventUID(ev))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetAllDayStartAt(ev.Start)
		ve.SetAllDayEndAt(ev.LastDay().AddDate(0, 0, 1))
		ve.SetSummary(ev.Name)
		if ev.Organization != "" {
			ve.SetLocation(ev.Organization)
		}
		category := strings.TrimSpace(ev.Type)
		if category == "" {
			category = class.Label
		}
		ve.SetProperty(ical.ComponentPropertyCategories, category)
		ve.SetProperty(ical.ComponentProperty(colorProperty), class.Color)
	}

	if skipped > 0 {
		appLog.Debug("ics export skipped undated events", "skipped", skipped)
	}
	return cal
}

// Write serializes the feed for events to w.
func Write(w io.Writer, events []model.Event, opts Options) error {
	cal := Build(events, opts)
	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("ics write: %w", err)
	}
	return nil
}

// EventUID derives a stable identifier from the event's content, so the same
// row keeps its UID across refreshes even if rows move.
func EventUID(ev model.Event) string {
	key := strings.Join([]string{
		ev.Name,
		ev.Type,
		ev.Organization,
		ev.Start.Format("2006-01-02"),
		ev.LastDay().Format("2006-01-02"),
	}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("agenda:"+key)).String()
}
