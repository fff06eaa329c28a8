package feed

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var lastDebouncerID atomic.Uint64

// DebounceMsg carries a settled value back into Update.
type DebounceMsg[T any] struct {
	id    uint64
	seq   uint64
	Value T
}

// Debouncer collapses a burst of values into the last one, emitted once
// the input has been quiet for the delay. It must only be used from a
// single goroutine (the Bubble Tea Update loop).
type Debouncer[T any] struct {
	id      uint64
	delay   time.Duration
	seq     uint64
	fired   uint64
	stopped bool
}

func NewDebouncer[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{
		id:    lastDebouncerID.Add(1),
		delay: delay,
	}
}

// Observe supersedes any pending value with v and returns the command that
// delivers it after the delay.
func (d *Debouncer[T]) Observe(v T) tea.Cmd {
	if d.stopped {
		return nil
	}
	d.seq++
	id, seq := d.id, d.seq
	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return DebounceMsg[T]{id: id, seq: seq, Value: v}
	})
}

// Handle reports whether msg is this debouncer's current emission and
// returns its value. Superseded emissions and those from other debouncers
// are rejected.
func (d *Debouncer[T]) Handle(msg tea.Msg) (T, bool) {
	var zero T
	m, ok := msg.(DebounceMsg[T])
	if !ok || m.id != d.id || d.stopped || m.seq != d.seq || m.seq == d.fired {
		return zero, false
	}
	d.fired = m.seq
	return m.Value, true
}

// Cancel drops the pending value, if any.
func (d *Debouncer[T]) Cancel() {
	d.seq++
	d.fired = d.seq
}

// Pending reports whether a value is waiting to be emitted.
func (d *Debouncer[T]) Pending() bool {
	return !d.stopped && d.seq != d.fired
}

// Stop cancels the pending value and refuses further input.
func (d *Debouncer[T]) Stop() {
	d.Cancel()
	d.stopped = true
}

func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}
