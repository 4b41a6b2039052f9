package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestUpdaterCoalescesBurst(t *testing.T) {
	var refreshes atomic.Int64
	u := NewUpdater(func(ctx context.Context) error {
		refreshes.Add(1)
		return nil
	}, 50*time.Millisecond)
	u.Start()
	defer u.Stop()

	for i := 0; i < 10; i++ {
		u.Request()
	}

	deadline := time.After(2 * time.Second)
	for refreshes.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("no refresh ran within deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Let the debounce window fully drain; the burst must not produce more
	// refreshes.
	time.Sleep(150 * time.Millisecond)
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("refreshes = %d; want 1 for a coalesced burst", got)
	}
}

func TestUpdaterRequestNeverBlocks(t *testing.T) {
	block := make(chan struct{})
	u := NewUpdater(func(ctx context.Context) error {
		<-block
		return nil
	}, 10*time.Millisecond)
	u.Start()
	defer func() {
		close(block)
		u.Stop()
	}()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			u.Request()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Request() blocked")
	}
}

func TestUpdaterSurvivesRefreshErrors(t *testing.T) {
	var refreshes atomic.Int64
	u := NewUpdater(func(ctx context.Context) error {
		refreshes.Add(1)
		return errors.New("engine busy")
	}, 10*time.Millisecond)
	u.Start()
	defer u.Stop()

	u.Request()
	waitFor(t, func() bool { return refreshes.Load() == 1 })

	u.Request()
	waitFor(t, func() bool { return refreshes.Load() == 2 })
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("condition not met within deadline")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
