package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"agenda/internal/capture"
	"agenda/internal/config"
	appLog "agenda/internal/log"
	"agenda/internal/model"
	"agenda/internal/schedule"
	"agenda/internal/source"
	"agenda/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values; non-empty values override the config.
type flagConfig struct {
	configPath string
	listen     string
	logLevel   string
	once       bool
	snapshot   string
	year       int
	month      int
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.logLevel != "" {
		conf.LogLevel = flags.logLevel
	}
	level, ok := appLog.ParseLevel(conf.LogLevel)
	if !ok {
		appLog.Info("unknown log level; using info", "log_level", conf.LogLevel)
	}
	appLog.SetLevel(level)

	appLog.Info("agenda starting", "version", version)
	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"cache_ttl", conf.CacheTTL,
		"source", conf.Source.Kind,
		"once", flags.once,
		"snapshot", flags.snapshot,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := source.New(ctx, conf.Source)
	if err != nil {
		appLog.Error("failed to build data source", err, "kind", conf.Source.Kind)
		os.Exit(1)
	}
	cache := source.NewCache(src, conf.CacheTTL)

	switch {
	case flags.once:
		err = runOnce(ctx, conf, cache, flags)
	case flags.snapshot != "":
		err = runSnapshot(ctx, conf, cache, flags)
	default:
		err = runServer(ctx, conf, cache)
	}
	if err != nil {
		appLog.Error("agenda failed", err)
		os.Exit(1)
	}
	appLog.Info("agenda exiting")
}

// runOnce fetches the table and prints the selected month to stdout.
func runOnce(ctx context.Context, conf *config.Config, src source.Source, flags flagConfig) error {
	tbl, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	year, month := targetMonth(conf, flags)
	return printMonth(os.Stdout, tbl, year, month, conf)
}

// runSnapshot serves the page on a loopback port just long enough to
// capture it.
func runSnapshot(ctx context.Context, conf *config.Config, src source.Source, flags flagConfig) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("snapshot listen: %w", err)
	}
	srv := &http.Server{
		Handler:           web.NewServer(conf, src).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("snapshot server failed", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	year, month := targetMonth(conf, flags)
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", strconv.Itoa(int(month)))
	target := "http://" + ln.Addr().String() + "/?" + q.Encode()

	opts := capture.Options{URL: target, OutputPath: flags.snapshot}
	if conf.BasicAuth != nil && conf.BasicAuth.Username != "" && conf.BasicAuth.Password != "" {
		u, _ := url.Parse(target)
		u.User = url.UserPassword(conf.BasicAuth.Username, conf.BasicAuth.Password)
		opts.URL = u.String()
	}
	return capture.CapturePNG(ctx, opts)
}

// runServer serves HTTP until ctx is canceled, re-warming the cache on the
// configured cron schedule.
func runServer(ctx context.Context, conf *config.Config, cache *source.Cache) error {
	_, err := schedule.Start(ctx, conf.RefreshCron, conf.Location(), "refresh", func(ctx context.Context) error {
		cache.Invalidate()
		tbl, err := cache.Fetch(ctx)
		if err != nil {
			return err
		}
		appLog.Info("table refreshed", "events", tbl.Len(), "origin", tbl.Origin)
		return nil
	})
	if err != nil {
		return err
	}

	// Warm the cache; a failure here is reported by the page on first view.
	if _, err := cache.Fetch(ctx); err != nil {
		appLog.Error("initial fetch failed", err)
	}

	srv := &http.Server{
		Addr:              conf.Listen,
		Handler:           web.NewServer(conf, cache).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+conf.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		appLog.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// targetMonth is the -year/-month selection, defaulting to today in the
// configured timezone.
func targetMonth(conf *config.Config, flags flagConfig) (int, time.Month) {
	today := model.DateOf(time.Now().In(conf.Location()))
	year, month := today.Year(), today.Month()
	if flags.year > 0 {
		year = flags.year
	}
	if flags.month >= 1 && flags.month <= 12 {
		month = time.Month(flags.month)
	}
	return year, month
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./agenda.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "", "Log level: debug, info or error (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Fetch the sheet, print the month and exit")
	flag.StringVar(&cfg.snapshot, "snapshot", "", "Capture the month page to this PNG path and exit")
	flag.IntVar(&cfg.year, "year", 0, "Year for -once/-snapshot (default: current)")
	flag.IntVar(&cfg.month, "month", 0, "Month 1-12 for -once/-snapshot (default: current)")

	flag.Parse()

	return cfg
}
