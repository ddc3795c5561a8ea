package web

import (
	"bytes"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"agenda/internal/calendar"
	"agenda/internal/config"
	"agenda/internal/ics"
	appLog "agenda/internal/log"
	"agenda/internal/model"
	"agenda/internal/source"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/month.html"))

// invalidator is implemented by caching sources such as *source.Cache.
type invalidator interface {
	Invalidate()
}

// Server renders the month page and exposes the JSON and iCalendar APIs.
type Server struct {
	cfg *config.Config
	src source.Source
	mux *http.ServeMux
	now func() time.Time
}

// NewServer constructs a new Server reading events from src.
func NewServer(cfg *config.Config, src source.Source) *Server {
	s := &Server{
		cfg: cfg,
		src: src,
		mux: http.NewServeMux(),
		now: time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty credentials leave auth off.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Agenda", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /events.ics", s.handleICS)
	s.mux.HandleFunc("GET /{$}", s.handlePage)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// today is the current calendar date in the configured timezone.
func (s *Server) today() time.Time {
	return model.DateOf(s.now().In(s.cfg.Location()))
}

func (s *Server) weekStart() time.Weekday {
	return calendar.ParseWeekStart(s.cfg.WeekStart)
}

// pageData is the template input. Err is set instead of the month when the
// table could not be loaded.
type pageData struct {
	Title           string
	SpreadsheetLink string
	Month           monthView
	Err             string
	Missing         []string
}

// handlePage renders the month page.
//
// GET /?year=2024&month=3&type=Live&org=USP
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r.URL.Query(), s.today())
	data := pageData{
		Title:           s.cfg.Title,
		SpreadsheetLink: s.cfg.SpreadsheetLink,
	}

	status := http.StatusOK
	tbl, err := s.src.Fetch(r.Context())
	if err != nil {
		status = http.StatusBadGateway
		data.Err = err.Error()
		var mc *source.MissingColumnsError
		if errors.As(err, &mc) {
			data.Missing = mc.Columns
		}
		// The grid still renders, empty.
		tbl = nil
	}
	data.Month = buildMonthView(tbl, q, s.weekStart(), s.today())

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		appLog.Error("page render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// handleCalendar returns the month grid as JSON.
//
// GET /api/calendar?year=2024&month=3&type=&org=
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.fetch(w, r)
	if !ok {
		return
	}
	q := parseQuery(r.URL.Query(), s.today())
	view := buildMonthView(tbl, q, s.weekStart(), s.today())

	appLog.Debug("api calendar request",
		"year", view.Year,
		"month", view.Month,
		"type", q.Type,
		"org", q.Org,
		"events", view.Total,
	)
	writeJSON(w, http.StatusOK, view)
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events    []calendar.Entry `json:"events"`
	Count     int              `json:"count"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// handleEvents returns list entries sorted by start date.
//
// GET /api/events?year=&month=&type=&org=
//   - month narrows to events starting in that month (year defaults to today's)
//   - year alone narrows to events starting in that year
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.fetch(w, r)
	if !ok {
		return
	}
	q := parseQuery(r.URL.Query(), s.today())
	entries := listEvents(tbl, q)

	appLog.Debug("api events request", "query", r.URL.RawQuery, "count", len(entries))
	writeJSON(w, http.StatusOK, eventsResponse{
		Events:    entries,
		Count:     len(entries),
		FetchedAt: tbl.FetchedAt,
	})
}

// handleICS serves the (type/org filtered) table as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.fetch(w, r)
	if !ok {
		return
	}
	q := parseQuery(r.URL.Query(), s.today())
	events := calendar.SortByStart(q.filter().Apply(tbl.Snapshot()))

	var buf bytes.Buffer
	if err := ics.Write(&buf, events, ics.Options{Name: s.cfg.Title, Stamp: tbl.FetchedAt}); err != nil {
		appLog.Error("ics export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="agenda.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// refreshResponse is the JSON response shape for /api/refresh.
type refreshResponse struct {
	Events    int       `json:"events"`
	FetchedAt time.Time `json:"fetched_at"`
}

// handleRefresh drops the cached table and loads a new one.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if inv, ok := s.src.(invalidator); ok {
		inv.Invalidate()
	}
	tbl, ok := s.fetch(w, r)
	if !ok {
		return
	}
	appLog.Info("table refreshed on request", "events", tbl.Len(), "origin", tbl.Origin)
	writeJSON(w, http.StatusOK, refreshResponse{Events: tbl.Len(), FetchedAt: tbl.FetchedAt})
}

// fetch loads the table for a JSON endpoint, writing a 502 on failure.
func (s *Server) fetch(w http.ResponseWriter, r *http.Request) (*model.Table, bool) {
	tbl, err := s.src.Fetch(r.Context())
	if err != nil {
		resp := errResp{Error: err.Error()}
		var mc *source.MissingColumnsError
		if errors.As(err, &mc) {
			resp.MissingColumns = mc.Columns
		}
		writeJSON(w, http.StatusBadGateway, resp)
		return nil, false
	}
	return tbl, true
}

type errResp struct {
	Error          string   `json:"error"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}
