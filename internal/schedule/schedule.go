// Package schedule runs periodic background jobs on a cron spec.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "agenda/internal/log"
)

// Job is one scheduled unit of work. It receives the context passed to Start.
type Job func(ctx context.Context) error

// cronLogger routes cron's internal messages to the app logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}

// Start schedules job on a standard 5-field cron spec evaluated in loc and
// returns once the scheduler is running. Runs never overlap; a run that is
// still busy when the next tick fires causes that tick to be skipped. The
// scheduler stops when ctx is canceled.
func Start(ctx context.Context, spec string, loc *time.Location, name string, job Job) (*cron.Cron, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("schedule %s: invalid spec %q: %w", name, spec, err)
	}
	if loc == nil {
		loc = time.Local
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(spec, func() {
		start := time.Now()
		if err := job(ctx); err != nil {
			appLog.Error("scheduled job failed", err, "job", name)
			return
		}
		appLog.Debug("scheduled job done", "job", name, "elapsed", time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", name, err)
	}

	c.Start()
	appLog.Info("scheduler started", "job", name, "spec", spec, "timezone", loc.String())

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		appLog.Info("scheduler stopped", "job", name)
	}()
	return c, nil
}
