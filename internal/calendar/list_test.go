package calendar

import (
	"testing"
	"time"

	"agenda/internal/classify"
	"agenda/internal/model"
)

func names(events []model.Event) []string {
	out := make([]string, len(events))
	for i, ev := range events {
		out[i] = ev.Name
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSortByStartStable(t *testing.T) {
	events := []model.Event{
		{Name: "undated1"},
		{Name: "b1", Start: model.Date(2024, 3, 2)},
		{Name: "a", Start: model.Date(2024, 3, 1)},
		{Name: "undated2"},
		{Name: "b2", Start: model.Date(2024, 3, 2)},
		{Name: "b3", Start: model.Date(2024, 3, 2)},
	}
	got := names(SortByStart(events))
	want := []string{"a", "b1", "b2", "b3", "undated1", "undated2"}
	if !equalStrings(got, want) {
		t.Errorf("SortByStart = %v, want %v", got, want)
	}
	if events[0].Name != "undated1" {
		t.Error("SortByStart modified its input")
	}
}

func TestMonthEvents(t *testing.T) {
	events := []model.Event{
		{Name: "feb-end", Start: model.Date(2024, 2, 28), End: model.Date(2024, 3, 2)},
		{Name: "mar-20", Start: model.Date(2024, 3, 20)},
		{Name: "mar-03", Start: model.Date(2024, 3, 3)},
		{Name: "mar-last-year", Start: model.Date(2023, 3, 3)},
		{Name: "none"},
	}
	got := names(MonthEvents(events, 2024, time.March))
	want := []string{"mar-03", "mar-20"}
	if !equalStrings(got, want) {
		t.Errorf("MonthEvents = %v, want %v", got, want)
	}
}

func TestNewEntry(t *testing.T) {
	tests := []struct {
		name      string
		ev        model.Event
		wantDate  string
		wantType  string
		wantColor string
	}{
		{
			name:      "range",
			ev:        model.Event{Name: "Feira", Type: "Feira de Estágios", Organization: "USP", Start: model.Date(2024, 3, 10), End: model.Date(2024, 3, 12)},
			wantDate:  "10/03/2024 - 12/03/2024",
			wantType:  "Feira de Estágios",
			wantColor: classify.ColorFair,
		},
		{
			name:      "same start and end",
			ev:        model.Event{Name: "Live", Type: "Live", Start: model.Date(2024, 5, 1), End: model.Date(2024, 5, 1)},
			wantDate:  "01/05/2024",
			wantType:  "Live",
			wantColor: classify.ColorLive,
		},
		{
			name:      "no end",
			ev:        model.Event{Name: "Circle", Type: "Circle", Start: model.Date(2024, 5, 1)},
			wantDate:  "01/05/2024",
			wantType:  "Circle",
			wantColor: classify.ColorCircle,
		},
		{
			name:      "no start no type",
			ev:        model.Event{Name: "Sem data"},
			wantDate:  UndefinedDate,
			wantType:  DefaultTypeLabel,
			wantColor: classify.ColorOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEntry(tt.ev)
			if e.DateLabel != tt.wantDate {
				t.Errorf("DateLabel = %q, want %q", e.DateLabel, tt.wantDate)
			}
			if e.TypeLabel != tt.wantType {
				t.Errorf("TypeLabel = %q, want %q", e.TypeLabel, tt.wantType)
			}
			if e.Color != tt.wantColor {
				t.Errorf("Color = %q, want %q", e.Color, tt.wantColor)
			}
			if e.Organization != tt.ev.Organization {
				t.Errorf("Organization = %q, want %q", e.Organization, tt.ev.Organization)
			}
			if (e.Start == nil) == tt.ev.HasStart() {
				t.Errorf("Start pointer presence mismatch")
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := map[string]string{
		"Curta":                 "Curta",
		"Exatamente 15!":        "Exatamente 15!",
		"123456789012345":       "123456789012345",
		"1234567890123456":      "123456789012...",
		"Feira de Estágios USP": "Feira de Est...",
	}
	for in, want := range tests {
		if got := Truncate(in); got != want {
			t.Errorf("Truncate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]model.Event{
		{Type: "Feira"}, {Type: "feira online"}, {Type: "Live"}, {Type: ""},
	})
	if s.Total != 4 {
		t.Errorf("Total = %d, want 4", s.Total)
	}
	want := map[classify.Category]int{classify.Fair: 2, classify.Live: 1, classify.Circle: 0, classify.Other: 1}
	for c, n := range want {
		got, ok := s.ByCategory[c]
		if !ok || got != n {
			t.Errorf("ByCategory[%s] = %d (present %v), want %d", c, got, ok, n)
		}
	}
}
