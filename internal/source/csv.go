package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	appLog "agenda/internal/log"
	"agenda/internal/model"
)

// maxCSVBytes caps the export body; the sheet is a few hundred rows.
const maxCSVBytes = 8 << 20

// CSVSource reads the published CSV export of the spreadsheet.
type CSVSource struct {
	client *http.Client
	url    string
}

// NewCSVSource creates a loader for a public CSV export URL such as
// https://docs.google.com/spreadsheets/d/e/<key>/pub?output=csv.
func NewCSVSource(url string) *CSVSource {
	return &CSVSource{
		client: &http.Client{
			Timeout: fetchTimeout,
		},
		url: url,
	}
}

// Fetch downloads and parses the export. Network errors, non-200 statuses,
// HTML bodies (typically a sign-in page for unpublished sheets) and
// malformed CSV are all fatal; there is no fallback dataset.
func (s *CSVSource) Fetch(ctx context.Context) (*model.Table, error) {
	if s.url == "" {
		return nil, errors.New("csv source URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv")

	start := time.Now()
	appLog.Debug("csv fetch start", "url", redactURL(s.url))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("csv fetch %s: %w", redactURL(s.url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("csv fetch %s: unexpected status %s", redactURL(s.url), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVBytes))
	if err != nil {
		return nil, fmt.Errorf("csv read body: %w", err)
	}
	if looksLikeHTML(body) {
		return nil, errors.New("received HTML instead of CSV - check that the sheet is published")
	}

	rows, err := ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	table, err := BuildTable(rows, redactURL(s.url))
	if err != nil {
		return nil, err
	}

	appLog.Info("csv fetch success",
		"url", redactURL(s.url),
		"rows", len(rows)-1,
		"events", table.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return table, nil
}

// ParseCSV reads every record of a UTF-8 CSV stream. A leading byte order
// mark is removed and rows may have differing field counts.
func ParseCSV(r io.Reader) ([][]string, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parse: %w", err)
	}
	return rows, nil
}

func looksLikeHTML(body []byte) bool {
	head := strings.ToUpper(strings.TrimSpace(string(body[:min(len(body), 256)])))
	return strings.HasPrefix(head, "<!DOCTYPE") || strings.HasPrefix(head, "<HTML")
}

// redactURL hides the path and query of a URL for logging; published
// export keys are effectively credentials.
//
//	https://docs.google.com/spreadsheets/d/e/KEY/pub?output=csv
//	-> https://docs.google.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i == -1 {
		return "csv://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexAny(rest, "/?#"); j != -1 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + redactedSuffix
}
