package dialogue

import (
	"sync"
	"time"
)

// debouncer serializes a stream of schedule calls into at most one pending
// execution: each Schedule cancels the previous token, so only the newest
// callback within the window runs. Cancel (and teardown) guarantees no
// stale timer fires afterwards.
type debouncer struct {
	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// Schedule arms fn to run after delay, cancelling any pending schedule.
// Returns true when a previously pending execution was superseded.
func (d *debouncer) Schedule(delay time.Duration, fn func()) (cancelled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		cancelled = true
	}
	d.gen++
	token := d.gen
	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		live := d.gen == token
		if live {
			d.timer = nil
		}
		d.mu.Unlock()
		if live {
			fn()
		}
	})
	return cancelled
}

// Cancel drops any pending execution.
func (d *debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Pending reports whether a scheduled execution is still armed.
func (d *debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
