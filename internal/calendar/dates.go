package calendar

import (
	"errors"
	"strings"
	"time"

	"agenda/internal/model"
)

// DisplayLayout is the day-first layout used everywhere a date is shown.
const DisplayLayout = "02/01/2006"

// UndefinedDate is shown in lists for events without a start date.
const UndefinedDate = "Data não definida"

// dayFirstLayouts are tried in order. Unpadded "2"/"1" also accept padded
// input, so "10/03/2024" and "1/3/2024" both match the first layout.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2.1.2006",
	"2006-01-02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var errEmptyDate = errors.New("empty date")

// ParseDate parses a spreadsheet date cell using the day-first convention
// of the source locale (pt-BR). ISO dates are accepted as well. The result
// is a calendar date at 00:00 UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errEmptyDate
	}
	var firstErr error
	for _, layout := range dayFirstLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return model.DateOf(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// CoerceDate is ParseDate with failures mapped to the zero (missing) date.
func CoerceDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FormatDate renders a date as dd/mm/yyyy. ParseDate(FormatDate(d)) == d for
// every calendar date d.
func FormatDate(d time.Time) string {
	return d.Format(DisplayLayout)
}

// FormatRange renders the date column of the list view.
func FormatRange(ev model.Event) string {
	if !ev.HasStart() {
		return UndefinedDate
	}
	s := FormatDate(ev.Start)
	if ev.HasEnd() && !ev.End.Equal(ev.Start) {
		s += " - " + FormatDate(ev.End)
	}
	return s
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the Portuguese name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

var weekdayLabels = [...]string{"DOM", "SEG", "TER", "QUA", "QUI", "SEX", "SÁB"}

// WeekdayLabel returns the short Portuguese label of d.
func WeekdayLabel(d time.Weekday) string {
	return weekdayLabels[d%7]
}

// Shift moves (year, month) by delta months, crossing year boundaries.
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := model.Date(year, month, 1).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}

// ParseWeekStart maps the config value to a weekday. Anything other than
// "monday" starts weeks on Sunday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "monday") {
		return time.Monday
	}
	return time.Sunday
}
