// Package debounce coalesces bursts of input (keystroke-driven search terms)
// into a single delayed recomputation: pending input is buffered, at most one
// fire is scheduled, and the newest input wins.
package debounce

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultWait matches the keystroke settle time the catalog views use before
// re-running grouping over the full corpus.
const DefaultWait = 300 * time.Millisecond

// Debouncer delivers the most recent Trigger input to fn once the wait
// elapses with no newer input. The clock is injected so tests drive time
// deterministically.
type Debouncer struct {
	clk  clock.Clock
	wait time.Duration
	fn   func(input string)

	mu      sync.Mutex
	timer   *clock.Timer
	gen     uint64
	pending string
}

func New(clk clock.Clock, wait time.Duration, fn func(input string)) *Debouncer {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Debouncer{clk: clk, wait: wait, fn: fn}
}

// Trigger buffers input and (re)starts the wait. A newer Trigger before the
// wait elapses supersedes the older input entirely.
func (d *Debouncer) Trigger(input string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = input
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clk.AfterFunc(d.wait, func() {
		d.fire(gen)
	})
}

// Stop cancels any pending fire.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		// A newer input or a Stop superseded this fire.
		d.mu.Unlock()
		return
	}
	input := d.pending
	d.timer = nil
	d.mu.Unlock()

	d.fn(input)
}
