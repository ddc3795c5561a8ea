// Package source loads the events spreadsheet into a model.Table.
//
// Two loaders exist, a public CSV export (CSVSource) and the Google Sheets
// read API (SheetsSource). Both hand raw rows to BuildTable, so column
// mapping, date coercion and blank-row removal behave identically.
package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"agenda/internal/calendar"
	"agenda/internal/config"
	"agenda/internal/model"
)

// Column headers expected in the first row of the sheet.
const (
	ColName         = "Nome"
	ColStart        = "Data início"
	ColEnd          = "Data Final"
	ColType         = "Tipo de evento"
	ColOrganization = "Universidade"
)

// RequiredColumns lists every header the loaders need, in report order.
var RequiredColumns = []string{ColName, ColStart, ColEnd, ColType, ColOrganization}

// fetchTimeout bounds a single remote read.
const fetchTimeout = 15 * time.Second

// Source produces a fresh table on every call.
type Source interface {
	Fetch(ctx context.Context) (*model.Table, error)
}

// MissingColumnsError is returned when the header row lacks required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing columns: " + strings.Join(e.Columns, ", ")
}

// New builds the loader selected by cfg.Kind.
func New(ctx context.Context, cfg config.SourceConfig) (Source, error) {
	switch cfg.Kind {
	case config.SourceCSV, "":
		return NewCSVSource(cfg.CSVURL), nil
	case config.SourceSheets:
		return NewSheetsSource(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// BuildTable maps raw rows (header first) to events. Unparseable dates become
// missing dates; rows without any value are dropped. A header lacking any of
// RequiredColumns yields *MissingColumnsError and no table.
func BuildTable(rows [][]string, origin string) (*model.Table, error) {
	if len(rows) == 0 {
		return nil, &MissingColumnsError{Columns: append([]string(nil), RequiredColumns...)}
	}

	index := headerIndex(rows[0])
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	cell := func(row []string, col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	events := make([]model.Event, 0, len(rows)-1)
	for i, row := range rows[1:] {
		ev := model.Event{
			Row:          i + 1,
			Name:         cell(row, ColName),
			Type:         cell(row, ColType),
			Organization: cell(row, ColOrganization),
			Start:        calendar.CoerceDate(cell(row, ColStart)),
			End:          calendar.CoerceDate(cell(row, ColEnd)),
		}
		if ev.IsBlank() {
			continue
		}
		events = append(events, ev)
	}

	return &model.Table{
		Events:    events,
		FetchedAt: time.Now().UTC(),
		Origin:    origin,
	}, nil
}

// headerIndex maps normalized header text to its first column index.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = i
	}
	return index
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return norm.NFC.String(strings.TrimSpace(h))
}
