package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agenda/internal/model"
)

const sampleCSV = "\ufeffNome,Data início,Data Final,Tipo de evento,Universidade\n" +
	"Feira USP,10/03/2024,12/03/2024,Feira de Estágios,USP\n" +
	"\"Live, com vírgula\",01/05/2024,,Live,\n" +
	",,,,\n" +
	"Circle,02/05/2024,02/05/2024,Círculo,Unicamp,coluna extra\n"

func TestCSVSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("output") != "csv" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	tbl, err := NewCSVSource(srv.URL + "/pub?output=csv").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tbl.Len() != 3 {
		t.Fatalf("got %d events, want 3: %+v", tbl.Len(), tbl.Events)
	}
	if got := tbl.Events[1].Name; got != "Live, com vírgula" {
		t.Errorf("quoted name = %q", got)
	}
	if !tbl.Events[0].End.Equal(model.Date(2024, 3, 12)) {
		t.Errorf("end date = %v", tbl.Events[0].End)
	}
	if strings.Contains(tbl.Origin, "output=csv") {
		t.Errorf("origin should be redacted: %q", tbl.Origin)
	}
}

func TestCSVSourceMissingColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Nome,Data início,Data Final,Tipo de evento\nFeira,10/03/2024,,Feira\n"))
	}))
	defer srv.Close()

	tbl, err := NewCSVSource(srv.URL).Fetch(context.Background())
	var mc *MissingColumnsError
	if !errors.As(err, &mc) {
		t.Fatalf("err = %v, want *MissingColumnsError", err)
	}
	if tbl != nil {
		t.Error("no partial table expected")
	}
	if len(mc.Columns) != 1 || mc.Columns[0] != "Universidade" {
		t.Errorf("missing = %v", mc.Columns)
	}
}

func TestCSVSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusNotFound)
			},
			wantErr: "unexpected status 404",
		},
		{
			name: "html sign-in page",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("  <!DOCTYPE html><html><body>Sign in</body></html>"))
			},
			wantErr: "received HTML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewCSVSource(srv.URL).Fetch(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCSVSourceCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewCSVSource(srv.URL).Fetch(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if _, err := NewCSVSource("").Fetch(context.Background()); err == nil {
		t.Error("empty URL should fail")
	}
}

func TestRedactURL(t *testing.T) {
	tests := map[string]string{
		"https://docs.google.com/spreadsheets/d/e/KEY/pub?output=csv": "https://docs.google.com/...(redacted)",
		"http://127.0.0.1:8080?key=secret":                            "http://127.0.0.1:8080/...(redacted)",
		"not a url":                                                   "csv://...(redacted)",
	}
	for in, want := range tests {
		if got := redactURL(in); got != want {
			t.Errorf("redactURL(%q) = %q, want %q", in, got, want)
		}
	}
}
