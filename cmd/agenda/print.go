package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"agenda/internal/calendar"
	"agenda/internal/config"
	"agenda/internal/model"
)

// printMonth writes a plain-text month grid followed by the month's list.
// A day cell shows its number and how many events are active on it.
func printMonth(w io.Writer, tbl *model.Table, year int, month time.Month, conf *config.Config) error {
	events := tbl.Snapshot()
	today := model.DateOf(time.Now().In(conf.Location()))
	grid := calendar.Build(events, year, month, calendar.Options{
		WeekStart: calendar.ParseWeekStart(conf.WeekStart),
		Today:     today,
	})

	fmt.Fprintf(w, "%s %d\n\n", calendar.MonthName(grid.Month), grid.Year)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(grid.Weekdays(), "\t")+"\t")
	for _, week := range grid.Weeks {
		cells := make([]string, 0, 7)
		for _, c := range week {
			cells = append(cells, cellText(c))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	list := calendar.MonthEvents(events, grid.Year, grid.Month)
	summary := calendar.Summarize(list)
	fmt.Fprintf(w, "\n%d eventos\n", summary.Total)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range calendar.Entries(list) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.DateLabel, e.Name, e.TypeLabel, e.Organization)
	}
	return tw.Flush()
}

func cellText(c calendar.Cell) string {
	if c.Blank() {
		return "."
	}
	s := strconv.Itoa(c.Day)
	if n := len(c.Events); n > 0 {
		s += "(" + strconv.Itoa(n) + ")"
	}
	if c.Today {
		s = "[" + s + "]"
	}
	return s
}
