// Package debounce coalesces bursts of events into a single call.
package debounce

import (
	"sync"
	"time"
)

var (
	afterFunc = time.AfterFunc
	now       = time.Now
)

// Debouncer runs fn once after calls to Trigger have been quiet for delay.
// With a max wait set, a burst that never goes quiet still fires once that
// much time has passed since its first Trigger.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	maxWait time.Duration
	timer   *time.Timer
	fn      func()
	// gen identifies the most recent Trigger; timers that fire for an older
	// generation do nothing.
	gen        uint64
	burstStart time.Time
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// WithMaxWait bounds how long a continuous burst can postpone fn.
func (d *Debouncer) WithMaxWait(maxWait time.Duration) *Debouncer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxWait = maxWait
	return d
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	t := now()
	if d.burstStart.IsZero() {
		d.burstStart = t
	}
	wait := d.delay
	if d.maxWait > 0 {
		if left := d.burstStart.Add(d.maxWait).Sub(t); left < wait {
			wait = max(left, 0)
		}
	}
	d.gen++
	gen := d.gen
	d.timer = afterFunc(wait, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.burstStart = time.Time{}
	fn := d.fn
	d.mu.Unlock()
	fn()
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	d.burstStart = time.Time{}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
