// Package scheduler triggers recurring runs from a 5-field cron expression.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blogagent/internal/logger"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run. Errors are logged and never stop the schedule.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule, never overlapping runs.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	job      Job
	log      *slog.Logger
}

// New validates spec, which must have exactly five fields
// (minute hour day-of-month month day-of-week).
func New(spec string, job Job, log *slog.Logger) (*Scheduler, error) {
	spec = strings.TrimSpace(spec)
	if n := len(strings.Fields(spec)); n != 5 {
		return nil, fmt.Errorf("cron expression %q must have 5 fields like '0 10 * * *', got %d", spec, n)
	}
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	if log == nil {
		log = logger.Get()
	}
	return &Scheduler{spec: spec, schedule: schedule, job: job, log: log}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

// Run blocks until ctx is done, then waits for a running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithLogger(cronLogger{log: s.log}),
		cron.WithChain(cron.Recover(cronLogger{log: s.log}), cron.SkipIfStillRunning(cronLogger{log: s.log})),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() { s.runJob(ctx) }))

	c.Start()
	s.log.Info("Scheduler started", "cron", s.spec, "next_run", s.Next(time.Now()))

	<-ctx.Done()
	s.log.Info("Scheduler stopping, waiting for running job")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runJob(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := s.job(ctx); err != nil {
		s.log.Error("Scheduled run failed", "error", err, "duration", time.Since(start))
		return
	}
	s.log.Info("Scheduled run finished", "duration", time.Since(start))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
