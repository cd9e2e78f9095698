package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestGo_Success(t *testing.T) {
	r := NewRunner(zerolog.Nop())
	var ran int32
	r.Go("test", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&ran) != 1 {
		t.Errorf("expected task to run once, ran %d times", ran)
	}
}

func TestGo_RetriesThenSucceeds(t *testing.T) {
	r := NewRunner(zerolog.Nop()).WithRetryDelays([]time.Duration{time.Millisecond, time.Millisecond})
	var attempts int32
	r.Go("flaky", func(ctx context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestGo_RetriesExhausted(t *testing.T) {
	r := NewRunner(zerolog.Nop()).WithRetryDelays([]time.Duration{time.Millisecond})
	var attempts int32
	r.Go("doomed", func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("boom")
	})
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestEvery_StopsOnShutdown(t *testing.T) {
	r := NewRunner(zerolog.Nop()).WithRetryDelays(nil)
	var ran int32
	r.Every(5*time.Millisecond, "tick", func(ctx context.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	time.Sleep(25 * time.Millisecond)
	if err := r.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&ran) == 0 {
		t.Error("expected periodic task to run at least once")
	}
}

func TestNextWeekly(t *testing.T) {
	// Wednesday 2015-10-14 10:00.
	now := time.Date(2015, 10, 14, 10, 0, 0, 0, time.UTC)

	next := nextWeekly(now, time.Monday, 8, 15)
	want := time.Date(2015, 10, 19, 8, 15, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}

	// Same day, earlier time: rolls over a full week.
	next = nextWeekly(now, time.Wednesday, 8, 15)
	want = time.Date(2015, 10, 21, 8, 15, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}

	// Same day, later time: today.
	next = nextWeekly(now, time.Wednesday, 11, 0)
	want = time.Date(2015, 10, 14, 11, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("expected %s, got %s", want, next)
	}
}
