package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceCSV    = "csv"
	SourceSheets = "sheets"
)

const (
	defaultListen    = "127.0.0.1:8080"
	defaultTimezone  = "America/Sao_Paulo"
	defaultWeekStart = "sunday"
	defaultRefresh   = "*/5 * * * *"
	defaultCacheTTL  = 5 * time.Minute
	defaultRange     = "A1:E"
	defaultLogLevel  = "info"
)

// SourceConfig selects and parameterizes the spreadsheet loader.
type SourceConfig struct {
	// Kind is "csv" (public CSV export) or "sheets" (Sheets read API).
	Kind string `yaml:"kind" json:"kind" env:"KIND"`

	// CSVURL is the published CSV export URL (kind=csv).
	CSVURL string `yaml:"csv_url" json:"csv_url" env:"CSV_URL"`

	// SpreadsheetID and Range address the sheet (kind=sheets). Range uses
	// A1 notation, e.g. "Eventos!A1:E".
	SpreadsheetID string `yaml:"spreadsheet_id" json:"spreadsheet_id" env:"SPREADSHEET_ID"`
	Range         string `yaml:"range" json:"range" env:"RANGE"`

	// CredentialsFile is a service-account JSON key. If empty, APIKey is used.
	CredentialsFile string `yaml:"credentials_file,omitempty" json:"-" env:"CREDENTIALS_FILE"`
	APIKey          string `yaml:"api_key,omitempty" json:"-" env:"API_KEY"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen" env:"LISTEN"`

	// Timezone is the IANA zone used to decide "today" and the default month.
	Timezone string `yaml:"timezone" json:"timezone" env:"TIMEZONE"`

	// WeekStart is the first column of the month grid: "sunday" (default)
	// or "monday".
	WeekStart string `yaml:"week_start" json:"week_start" env:"WEEK_START"`

	// RefreshCron re-warms the table cache on a cron schedule.
	RefreshCron string `yaml:"refresh" json:"refresh" env:"REFRESH"`

	// CacheTTL bounds how long a fetched table is served.
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl" env:"CACHE_TTL"`

	// SpreadsheetLink is the "open original spreadsheet" link on the page.
	SpreadsheetLink string `yaml:"spreadsheet_link" json:"spreadsheet_link" env:"SPREADSHEET_LINK"`

	// Title is shown in the page header.
	Title string `yaml:"title" json:"title" env:"TITLE"`

	LogLevel string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`

	Source SourceConfig `yaml:"source" json:"source" envPrefix:"SOURCE_"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      defaultListen,
		Timezone:    defaultTimezone,
		WeekStart:   defaultWeekStart,
		RefreshCron: defaultRefresh,
		CacheTTL:    defaultCacheTTL,
		Title:       "Agenda de Eventos",
		LogLevel:    defaultLogLevel,
		Source: SourceConfig{
			Kind:  SourceCSV,
			Range: defaultRange,
		},
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	switch strings.ToLower(c.WeekStart) {
	case "monday", "sunday":
		c.WeekStart = strings.ToLower(c.WeekStart)
	default:
		// Unknown value; fall back to sunday to avoid surprising layouts.
		c.WeekStart = defaultWeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.Title == "" {
		c.Title = "Agenda de Eventos"
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.Source.Kind = strings.ToLower(strings.TrimSpace(c.Source.Kind))
	if c.Source.Kind == "" {
		c.Source.Kind = SourceCSV
	}
	if c.Source.Range == "" {
		c.Source.Range = defaultRange
	}
}

// Validate reports configuration that cannot produce a working data source.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.CSVURL == "" {
			return errors.New("source.csv_url is required for kind csv")
		}
	case SourceSheets:
		if c.Source.SpreadsheetID == "" {
			return errors.New("source.spreadsheet_id is required for kind sheets")
		}
		if c.Source.CredentialsFile == "" && c.Source.APIKey == "" {
			return errors.New("source.credentials_file or source.api_key is required for kind sheets")
		}
	default:
		return fmt.Errorf("unknown source.kind %q", c.Source.Kind)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Load loads configuration from the given YAML path, then applies
// environment overrides.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms (parent directory created as needed).
//   - A .env file in the working directory, if any, is loaded into the
//     process environment without overriding variables already set.
//   - AGENDA_* variables override file values (see env tags).
//   - The result is normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	cfg, err := loadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg fields from AGENDA_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "AGENDA_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes the given configuration to the specified path.
//
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".agenda-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
