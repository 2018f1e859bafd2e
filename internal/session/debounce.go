package session

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultDebounceDelay is the trailing-edge window for variable-change
// regeneration.
const DefaultDebounceDelay = 500 * time.Millisecond

// debouncer coalesces bursts of triggers into a single trailing-edge fire.
// Each Trigger resets the window, so N rapid triggers run fn exactly once,
// one delay after the last trigger.
type debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &debouncer{delay: delay}
}

// Trigger (re)starts the window. fn runs on the timer goroutine once the
// window elapses without another trigger.
func (d *debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	slog.Debug("debouncer trigger", "delay", d.delay)
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
}

// Stop cancels any pending fire.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
