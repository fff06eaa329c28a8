package feed

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arrival struct {
	msg tea.Msg
	at  time.Duration
}

func TestDebouncerCollapsesBurst(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	d := NewDebouncer[string](500 * time.Millisecond)
	arrivals := make(chan arrival, 3)
	start := time.Now()

	observe := func(v string) {
		cmd := d.Observe(v)
		require.NotNil(t, cmd)
		go func() {
			msg := cmd()
			arrivals <- arrival{msg: msg, at: time.Since(start)}
		}()
	}

	observe("a")
	time.Sleep(100 * time.Millisecond)
	observe("b")
	time.Sleep(50 * time.Millisecond)
	observe("c")

	var emitted []arrival
	for range 3 {
		a := <-arrivals
		if v, ok := d.Handle(a.msg); ok {
			emitted = append(emitted, arrival{msg: v, at: a.at})
		}
	}

	require.Len(t, emitted, 1, "only the last value of a burst is emitted")
	assert.Equal(t, "c", emitted[0].msg)
	assert.InDelta(t, float64(650*time.Millisecond), float64(emitted[0].at), float64(150*time.Millisecond))
	assert.False(t, d.Pending())
}

func TestDebouncerSingleValue(t *testing.T) {
	d := NewDebouncer[int](time.Millisecond)

	msg := d.Observe(42)()
	v, ok := d.Handle(msg)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = d.Handle(msg)
	assert.False(t, ok, "an emission is delivered once")
}

func TestDebouncerPendingAndCancel(t *testing.T) {
	d := NewDebouncer[string](time.Millisecond)
	assert.False(t, d.Pending())

	cmd := d.Observe("x")
	assert.True(t, d.Pending())

	d.Cancel()
	assert.False(t, d.Pending())

	_, ok := d.Handle(cmd())
	assert.False(t, ok, "cancelled values are not emitted")
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer[string](time.Millisecond)
	cmd := d.Observe("late")
	d.Stop()

	_, ok := d.Handle(cmd())
	assert.False(t, ok, "nothing is emitted after stop")
	assert.Nil(t, d.Observe("ignored"))
	assert.False(t, d.Pending())
}

func TestDebouncersAreIndependent(t *testing.T) {
	search := NewDebouncer[string](time.Millisecond)
	find := NewDebouncer[string](time.Millisecond)

	searchMsg := search.Observe("s")()
	findMsg := find.Observe("f")()

	_, ok := find.Handle(searchMsg)
	assert.False(t, ok)
	_, ok = search.Handle(findMsg)
	assert.False(t, ok)

	v, ok := search.Handle(searchMsg)
	assert.True(t, ok)
	assert.Equal(t, "s", v)

	v, ok = find.Handle(findMsg)
	assert.True(t, ok)
	assert.Equal(t, "f", v)
}

func TestDebouncerIgnoresForeignMessages(t *testing.T) {
	d := NewDebouncer[string](time.Millisecond)
	d.Observe("x")

	_, ok := d.Handle(tea.KeyMsg{})
	assert.False(t, ok)
	_, ok = d.Handle(DebounceMsg[int]{Value: 1})
	assert.False(t, ok)
}
