package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RefreshFunc applies a single engine refresh. Implementations push the
// current filter configuration to the filtering engine.
type RefreshFunc func(ctx context.Context) error

// Updater is a debounced, fire-and-forget refresh trigger. Request returns
// immediately; bursts of requests within the debounce window coalesce into a
// single refresh. Refresh errors are logged and never reported back to the
// requester — callers signal intent, they do not wait for completion.
type Updater struct {
	refresh RefreshFunc
	window  time.Duration
	timeout time.Duration

	signal chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup

	startOnce sync.Once
	stopOnce  sync.Once
}

func NewUpdater(refresh RefreshFunc, window time.Duration) *Updater {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	return &Updater{
		refresh: refresh,
		window:  window,
		timeout: 30 * time.Second,
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start launches the refresh loop.
func (u *Updater) Start() {
	u.startOnce.Do(func() {
		u.wg.Add(1)
		go u.loop()
	})
}

// Stop terminates the refresh loop. Pending requests are dropped.
func (u *Updater) Stop() {
	u.stopOnce.Do(func() { close(u.done) })
	u.wg.Wait()
}

// Request signals that the engine should refresh. Never blocks; a request
// arriving while one is already pending is absorbed.
func (u *Updater) Request() {
	select {
	case u.signal <- struct{}{}:
	default:
	}
}

func (u *Updater) loop() {
	defer u.wg.Done()

	for {
		select {
		case <-u.done:
			return
		case <-u.signal:
		}

		// Debounce: let a burst of subscription changes settle, absorbing
		// further signals, then refresh once.
		timer := time.NewTimer(u.window)
	settle:
		for {
			select {
			case <-u.done:
				timer.Stop()
				return
			case <-u.signal:
			case <-timer.C:
				break settle
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
		start := time.Now()
		if err := u.refresh(ctx); err != nil {
			slog.Error("engine refresh failed", "error", err)
		} else {
			slog.Info("engine refreshed", "duration_ms", time.Since(start).Milliseconds())
		}
		cancel()
	}
}
