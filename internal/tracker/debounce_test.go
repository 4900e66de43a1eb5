package tracker

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerOnlyLastCallFires(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		v := int32(i)
		d.Schedule(func() {
			fired.Add(1)
			last.Store(v)
		})
	}

	waitFor(t, func() bool { return fired.Load() > 0 }, "debounced call never fired")
	time.Sleep(50 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("burst fired %d times, want 1", got)
	}
	if got := last.Load(); got != 5 {
		t.Errorf("fired call was schedule %d, want the last (5)", got)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Schedule(func() { fired.Add(1) })
	d.Cancel()

	time.Sleep(50 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("cancelled call fired %d times", got)
	}

	// Cancel with nothing pending is a no-op.
	d.Cancel()
}
