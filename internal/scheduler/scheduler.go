// Package scheduler triggers the daily image job once a day in-process.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"foodcrimes/internal/service"
)

const defaultRetryDelay = 15 * time.Minute

// Runner is the job being scheduled.
type Runner interface {
	Run(ctx context.Context) (*service.DailyImageResult, error)
}

// Scheduler runs the job at a fixed wall-clock time each day. A failed run
// is retried after RetryDelay until the next regular slot.
type Scheduler struct {
	runner     Runner
	hour       int
	minute     int
	loc        *time.Location
	RetryDelay time.Duration

	now  func() time.Time
	once sync.Once
	done chan struct{}
}

// ParseRunAt parses an HH:MM time of day.
func ParseRunAt(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid run time %q, want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// New builds a Scheduler for runAt (HH:MM) in loc.
func New(runner Runner, runAt string, loc *time.Location) (*Scheduler, error) {
	h, m, err := ParseRunAt(runAt)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		runner:     runner,
		hour:       h,
		minute:     m,
		loc:        loc,
		RetryDelay: defaultRetryDelay,
		now:        time.Now,
		done:       make(chan struct{}),
	}, nil
}

// NextRun returns the first run slot strictly after t.
func (s *Scheduler) NextRun(t time.Time) time.Time {
	t = t.In(s.loc)
	next := time.Date(t.Year(), t.Month(), t.Day(), s.hour, s.minute, 0, 0, s.loc)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start launches the loop once. If today's slot has already passed, the job
// runs immediately; it is a no-op when today's image exists.
func (s *Scheduler) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.loop(ctx)
	})
}

// Done is closed when the loop exits.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	now := s.now()
	ok := true
	if s.slotPassed(now) {
		ok = s.runOnce(ctx)
	}

	for {
		wait := s.wait(s.now(), ok)
		slog.InfoContext(ctx, "Daily image job scheduled", slog.Duration("in", wait))
		if !sleepContext(ctx, wait) {
			return
		}
		ok = s.runOnce(ctx)
	}
}

func (s *Scheduler) slotPassed(now time.Time) bool {
	now = now.In(s.loc)
	slot := time.Date(now.Year(), now.Month(), now.Day(), s.hour, s.minute, 0, 0, s.loc)
	return !now.Before(slot)
}

// wait is the delay until the next attempt given whether the last one succeeded.
func (s *Scheduler) wait(now time.Time, lastOK bool) time.Duration {
	next := s.NextRun(now).Sub(now)
	if !lastOK && s.RetryDelay > 0 && s.RetryDelay < next {
		return s.RetryDelay
	}
	return next
}

func (s *Scheduler) runOnce(ctx context.Context) bool {
	res, err := s.runner.Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled daily image run failed", slog.Any("error", err))
		return false
	}
	slog.InfoContext(ctx, "Scheduled daily image run finished",
		slog.String("generation_date", res.Image.GenerationDate),
		slog.Bool("created", res.Created))
	return true
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
