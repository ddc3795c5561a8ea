package web

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"agenda/internal/calendar"
	"agenda/internal/classify"
	"agenda/internal/model"
)

// viewQuery is the parsed form of ?year=&month=&type=&org=.
type viewQuery struct {
	Year     int
	Month    time.Month
	MonthSet bool
	YearSet  bool
	Type     string
	Org      string
}

// parseQuery fills missing or invalid year/month with today's. Out-of-range
// months roll over, so month=13 is January of the next year.
func parseQuery(q url.Values, today time.Time) viewQuery {
	v := viewQuery{
		Year:  today.Year(),
		Month: today.Month(),
		Type:  strings.TrimSpace(q.Get("type")),
		Org:   strings.TrimSpace(q.Get("org")),
	}
	if y := parseIntDefault(q.Get("year"), 0); y >= 1 && y <= 9999 {
		v.Year = y
		v.YearSet = true
	}
	if raw := q.Get("month"); raw != "" {
		if m, err := strconv.Atoi(raw); err == nil {
			v.Year, v.Month = calendar.Shift(v.Year, time.Month(m), 0)
			v.MonthSet = true
		}
	}
	return v
}

func (v viewQuery) filter() calendar.Filter {
	return calendar.Filter{Type: v.Type, Organization: v.Org}
}

// link returns the page URL for the month delta months away, keeping the
// text filters.
func (v viewQuery) link(delta int) string {
	y, m := calendar.Shift(v.Year, v.Month, delta)
	q := url.Values{}
	q.Set("year", strconv.Itoa(y))
	q.Set("month", strconv.Itoa(int(m)))
	if v.Type != "" && v.Type != calendar.All {
		q.Set("type", v.Type)
	}
	if v.Org != "" && v.Org != calendar.All {
		q.Set("org", v.Org)
	}
	return "/?" + q.Encode()
}

// chip is one event rendered inside a day cell.
type chip struct {
	Name         string            `json:"name"`
	Short        string            `json:"short"`
	Category     classify.Category `json:"category"`
	Color        string            `json:"color"`
	Type         string            `json:"type"`
	Organization string            `json:"organization"`
}

func newChip(ev model.Event) chip {
	cl := classify.Classify(ev.Type)
	return chip{
		Name:         ev.Name,
		Short:        calendar.Truncate(ev.Name),
		Category:     cl.Category,
		Color:        cl.Color,
		Type:         ev.Type,
		Organization: ev.Organization,
	}
}

// dayView is one grid slot. Day is 0 for padding cells.
type dayView struct {
	Day    int    `json:"day"`
	Date   string `json:"date,omitempty"`
	Today  bool   `json:"today,omitempty"`
	Events []chip `json:"events"`
	More   int    `json:"more"`
}

// counter is one legend entry with its monthly count.
type counter struct {
	classify.Class
	Count int `json:"count"`
}

// monthView is shared by the HTML page and /api/calendar.
type monthView struct {
	Year      int              `json:"year"`
	Month     int              `json:"month"`
	MonthName string           `json:"month_name"`
	WeekStart string           `json:"week_start"`
	Weekdays  []string         `json:"weekdays"`
	Weeks     [][]dayView      `json:"weeks"`
	Legend    []counter        `json:"legend"`
	Total     int              `json:"total"`
	Entries   []calendar.Entry `json:"entries"`
	Choices   calendar.Choices `json:"choices"`
	Type      string           `json:"type,omitempty"`
	Org       string           `json:"org,omitempty"`
	FetchedAt time.Time        `json:"fetched_at"`

	PrevURL  string `json:"-"`
	NextURL  string `json:"-"`
	TodayURL string `json:"-"`
}

// buildMonthView bins the filtered table into the requested month. The
// filter choices always come from the unfiltered table.
func buildMonthView(tbl *model.Table, q viewQuery, weekStart time.Weekday, today time.Time) monthView {
	all := tbl.Snapshot()
	events := q.filter().Apply(all)

	grid := calendar.Build(events, q.Year, q.Month, calendar.Options{WeekStart: weekStart, Today: today})
	monthEvents := calendar.MonthEvents(events, grid.Year, grid.Month)
	summary := calendar.Summarize(monthEvents)

	weeks := make([][]dayView, 0, len(grid.Weeks))
	for _, w := range grid.Weeks {
		row := make([]dayView, 0, len(w))
		for _, c := range w {
			d := dayView{Day: c.Day, Today: c.Today, More: c.More(), Events: []chip{}}
			if !c.Blank() {
				d.Date = c.Date.Format("2006-01-02")
			}
			for _, ev := range c.Shown() {
				d.Events = append(d.Events, newChip(ev))
			}
			row = append(row, d)
		}
		weeks = append(weeks, row)
	}

	legend := make([]counter, 0, 4)
	for _, cl := range classify.Categories() {
		legend = append(legend, counter{Class: cl, Count: summary.ByCategory[cl.Category]})
	}

	weekStartName := "sunday"
	if grid.WeekStart == time.Monday {
		weekStartName = "monday"
	}

	shown := q
	shown.Year, shown.Month = grid.Year, grid.Month
	todayQuery := q
	todayQuery.Year, todayQuery.Month = today.Year(), today.Month()

	var fetchedAt time.Time
	if tbl != nil {
		fetchedAt = tbl.FetchedAt
	}

	return monthView{
		Year:      grid.Year,
		Month:     int(grid.Month),
		MonthName: calendar.MonthName(grid.Month),
		WeekStart: weekStartName,
		Weekdays:  grid.Weekdays(),
		Weeks:     weeks,
		Legend:    legend,
		Total:     summary.Total,
		Entries:   calendar.Entries(monthEvents),
		Choices:   calendar.FilterChoices(all),
		Type:      q.Type,
		Org:       q.Org,
		FetchedAt: fetchedAt,
		PrevURL:   shown.link(-1),
		NextURL:   shown.link(1),
		TodayURL:  todayQuery.link(0),
	}
}

// listEvents applies the /api/events selection: text filters always, year
// and month only when present in the query.
func listEvents(tbl *model.Table, q viewQuery) []calendar.Entry {
	f := q.filter()
	if q.MonthSet {
		f.Year, f.Month = q.Year, q.Month
	} else if q.YearSet {
		f.Year = q.Year
	}
	return calendar.Entries(calendar.SortByStart(f.Apply(tbl.Snapshot())))
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
