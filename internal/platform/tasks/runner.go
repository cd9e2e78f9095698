// Package tasks runs work outside the request path: fire-and-forget jobs with
// retry, and periodic schedules. Execution is at-least-once; independently
// scheduled tasks have no ordering guarantee.
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Runner executes functions asynchronously. A failed task is retried after
// each configured delay before being dropped with an error log.
type Runner struct {
	log         zerolog.Logger
	retryDelays []time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewRunner(log zerolog.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		log:         log.With().Str("component", "tasks").Logger(),
		retryDelays: []time.Duration{1 * time.Second, 30 * time.Second, 5 * time.Minute},
		ctx:         ctx,
		cancel:      cancel,
	}
}

// WithRetryDelays replaces the retry schedule. An empty slice means a single
// attempt with no retries.
func (r *Runner) WithRetryDelays(delays []time.Duration) *Runner {
	r.retryDelays = delays
	return r
}

// Go schedules fn for asynchronous execution and returns immediately.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(name, fn)
	}()
}

func (r *Runner) run(name string, fn func(ctx context.Context) error) {
	err := fn(r.ctx)
	if err == nil {
		return
	}

	for attempt, delay := range r.retryDelays {
		r.log.Warn().Err(err).Str("task", name).Int("attempt", attempt+1).
			Dur("retry_in", delay).Msg("task failed, retrying")

		select {
		case <-r.ctx.Done():
			return
		case <-time.After(delay):
		}

		if err = fn(r.ctx); err == nil {
			return
		}
	}

	r.log.Error().Err(err).Str("task", name).Msg("task failed, retries exhausted")
}

// Every runs fn on a fixed interval until Shutdown.
func (r *Runner) Every(interval time.Duration, name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				r.run(name, fn)
			}
		}
	}()
}

// WeeklyAt runs fn once a week on the given weekday and wall-clock time.
func (r *Runner) WeeklyAt(weekday time.Weekday, hour, minute int, name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			wait := time.Until(nextWeekly(time.Now(), weekday, hour, minute))
			select {
			case <-r.ctx.Done():
				return
			case <-time.After(wait):
				r.run(name, fn)
			}
		}
	}()
}

// nextWeekly returns the first instant strictly after now that falls on the
// given weekday at hour:minute.
func nextWeekly(now time.Time, weekday time.Weekday, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	next = next.AddDate(0, 0, days)
	if !next.After(now) {
		next = next.AddDate(0, 0, 7)
	}
	return next
}

// Shutdown stops periodic schedules, cancels running tasks, and waits for
// them to finish or for ctx to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.cancel()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
