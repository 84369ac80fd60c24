package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_InvalidCron(t *testing.T) {
	_, err := New("not a cron spec", func(context.Context) {})
	if err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestNew_ValidCron(t *testing.T) {
	for _, spec := range []string{"0 7 * * *", "*/5 * * * *", "@hourly"} {
		if _, err := New(spec, func(context.Context) {}); err != nil {
			t.Errorf("New(%q) failed: %v", spec, err)
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	sched, err := New("0 7 * * *", func(context.Context) {})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sched.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
}
