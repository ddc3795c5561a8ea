package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFirstRunWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WeekStart != "sunday" || cfg.CacheTTL != 5*time.Minute || cfg.Source.Kind != SourceCSV {
		t.Errorf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perms = %o, want 600", perm)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.CacheTTL != cfg.CacheTTL || again.Listen != cfg.Listen {
		t.Errorf("reloaded config differs: %+v vs %+v", again, cfg)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
listen: ":9000"
week_start: Monday
cache_ttl: 2m
source:
  kind: sheets
  spreadsheet_id: file-id
  api_key: file-key
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("AGENDA_LISTEN", ":9100")
	t.Setenv("AGENDA_SOURCE_SPREADSHEET_ID", "env-id")
	t.Setenv("AGENDA_CACHE_TTL", "90s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9100" {
		t.Errorf("Listen = %q, want env override", cfg.Listen)
	}
	if cfg.Source.SpreadsheetID != "env-id" {
		t.Errorf("SpreadsheetID = %q, want env override", cfg.Source.SpreadsheetID)
	}
	if cfg.Source.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file value", cfg.Source.APIKey)
	}
	if cfg.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.CacheTTL)
	}
	if cfg.WeekStart != "monday" {
		t.Errorf("WeekStart = %q, want monday", cfg.WeekStart)
	}
	if cfg.Source.Range != defaultRange {
		t.Errorf("Range = %q, want default", cfg.Source.Range)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"csv ok", func(c *Config) { c.Source.CSVURL = "https://example.com/pub?output=csv" }, false},
		{"csv missing url", func(c *Config) {}, true},
		{"sheets ok", func(c *Config) {
			c.Source.Kind = SourceSheets
			c.Source.SpreadsheetID = "id"
			c.Source.CredentialsFile = "/etc/agenda/sa.json"
		}, false},
		{"sheets missing credentials", func(c *Config) {
			c.Source.Kind = SourceSheets
			c.Source.SpreadsheetID = "id"
		}, true},
		{"unknown kind", func(c *Config) { c.Source.Kind = "xlsx" }, true},
		{"bad timezone", func(c *Config) {
			c.Source.CSVURL = "https://example.com"
			c.Timezone = "Mars/Olympus"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeUnknownWeekStart(t *testing.T) {
	cfg := &Config{WeekStart: "friday"}
	cfg.Normalize()
	if cfg.WeekStart != "sunday" {
		t.Errorf("WeekStart = %q, want sunday", cfg.WeekStart)
	}
}
