package calendar

import (
	"testing"
	"time"

	"agenda/internal/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"10/03/2024", model.Date(2024, 3, 10), false},
		{" 1/3/2024 ", model.Date(2024, 3, 1), false},
		{"10/03/24", model.Date(2024, 3, 10), false},
		{"10-03-2024", model.Date(2024, 3, 10), false},
		{"10.03.2024", model.Date(2024, 3, 10), false},
		{"2024-03-10", model.Date(2024, 3, 10), false},
		{"10/03/2024 14:30:00", model.Date(2024, 3, 10), false},
		{"10/03/2024 14:30", model.Date(2024, 3, 10), false},
		{"2024-03-10T23:00:00-03:00", model.Date(2024, 3, 10), false},
		{"", time.Time{}, true},
		{"a definir", time.Time{}, true},
		{"31/02/2024", time.Time{}, true},
		{"13/13/2024", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if CoerceDate(tt.in).IsZero() != tt.wantErr {
				t.Errorf("CoerceDate(%q) disagrees with ParseDate", tt.in)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	start := model.Date(2023, 12, 25)
	for d := start; d.Before(start.AddDate(1, 2, 0)); d = d.AddDate(0, 0, 1) {
		got, err := ParseDate(FormatDate(d))
		if err != nil {
			t.Fatalf("ParseDate(FormatDate(%v)): %v", d, err)
		}
		if !got.Equal(d) {
			t.Fatalf("round trip of %v gave %v", d, got)
		}
	}
}

func TestShift(t *testing.T) {
	tests := []struct {
		y     int
		m     time.Month
		delta int
		wantY int
		wantM time.Month
	}{
		{2024, time.January, -1, 2023, time.December},
		{2024, time.December, 1, 2025, time.January},
		{2024, time.June, 0, 2024, time.June},
		{2024, time.March, 14, 2025, time.May},
	}
	for _, tt := range tests {
		y, m := Shift(tt.y, tt.m, tt.delta)
		if y != tt.wantY || m != tt.wantM {
			t.Errorf("Shift(%d, %d, %d) = %d-%d, want %d-%d", tt.y, tt.m, tt.delta, y, m, tt.wantY, tt.wantM)
		}
	}
}

func TestNames(t *testing.T) {
	if MonthName(time.March) != "Março" || MonthName(0) != "" {
		t.Error("unexpected month names")
	}
	if WeekdayLabel(time.Saturday) != "SÁB" {
		t.Error("unexpected weekday label")
	}
	if ParseWeekStart("Monday") != time.Monday || ParseWeekStart("") != time.Sunday || ParseWeekStart("tuesday") != time.Sunday {
		t.Error("unexpected week start parsing")
	}
}
