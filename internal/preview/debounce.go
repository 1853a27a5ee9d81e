// Package preview schedules debounced document renders and manages the
// single live preview file.
package preview

import (
	"sync"
	"time"
)

// DefaultDelay is how long the previewer waits after the last edit before
// rendering.
const DefaultDelay = 500 * time.Millisecond

// Debouncer is a single-slot deferred task: submitting a function replaces
// any previously submitted function that has not fired yet. A task that has
// already started runs to completion; it is never interrupted.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Submit schedules fn to run after the delay, replacing any pending task.
func (d *Debouncer) Submit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops any pending task.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
