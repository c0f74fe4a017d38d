package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// The Service always ticks on a real one-second cadence regardless of
// the requested duration (see run's time.NewTicker(time.Second)) — only
// the tick count before expiry scales with duration. Every case below
// therefore budgets in whole seconds rather than assuming sub-second
// resolution.

func TestStartTicksThenExpires(t *testing.T) {
	s := New()
	var ticks int32
	done := make(chan struct{})

	s.Start("room1", KindDrawing, 1500*time.Millisecond,
		func(remaining int) { atomic.AddInt32(&ticks, 1) },
		func() { close(done) },
	)

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timer never expired")
	}

	assert.GreaterOrEqual(t, atomic.LoadInt32(&ticks), int32(1))
}

func TestStartCancelsPriorTimerForSameRoom(t *testing.T) {
	s := New()
	var staleExpired int32
	var freshExpired int32

	s.Start("room1", KindWordSelection, 5*time.Second, func(int) {}, func() { atomic.AddInt32(&staleExpired, 1) })
	s.Start("room1", KindWordSelection, 1500*time.Millisecond, func(int) {}, func() { atomic.AddInt32(&freshExpired, 1) })

	time.Sleep(1700 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&staleExpired), "superseded timer must never fire")
	assert.Equal(t, int32(1), atomic.LoadInt32(&freshExpired))
}

func TestStopPreventsExpiry(t *testing.T) {
	s := New()
	var expired int32
	s.Start("room1", KindInterRound, 1500*time.Millisecond, func(int) {}, func() { atomic.AddInt32(&expired, 1) })
	s.Stop("room1")

	time.Sleep(1700 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))
}

func TestPanickingCallbackIsRecovered(t *testing.T) {
	s := New()
	done := make(chan struct{})
	var once sync.Once

	assert.NotPanics(t, func() {
		s.Start("room1", KindDrawing, 1500*time.Millisecond,
			func(int) { panic("tick boom") },
			func() {
				once.Do(func() { close(done) })
			},
		)
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("expiry never fired after a panicking tick")
		}
	})
}

func TestForgetStopsAndClearsGeneration(t *testing.T) {
	s := New()
	var expired int32
	s.Start("room1", KindDrawing, 1500*time.Millisecond, func(int) {}, func() { atomic.AddInt32(&expired, 1) })
	s.Forget("room1")

	time.Sleep(1700 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&expired))

	_, ok := s.gens["room1"]
	assert.False(t, ok)
}
