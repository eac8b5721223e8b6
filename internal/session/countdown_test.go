package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountdown_RemainingAndReset(t *testing.T) {
	c := NewCountdown(10*time.Second, time.Hour, nil)
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	now := base
	c.now = func() time.Time { return now }

	assert.Zero(t, c.Remaining(), "a stopped countdown MUST read zero")

	c.Start(nil)
	assert.Equal(t, 10*time.Second, c.Remaining())

	now = base.Add(4 * time.Second)
	assert.Equal(t, 6*time.Second, c.Remaining())
	assert.Equal(t, 4*time.Second, c.Elapsed())

	now = base.Add(15 * time.Second)
	assert.Zero(t, c.Remaining(), "remaining MUST NOT go negative")

	c.Reset()
	assert.Zero(t, c.Remaining())
	assert.Zero(t, c.Elapsed())
	c.Reset()
}

func TestCountdown_NoTicksAfterReset(t *testing.T) {
	// GOAL: Verify Reset waits for every ticker started before it, even under concurrent restarts
	//
	// TEST SCENARIO: many Start/Reset pairs race → final Reset → tick count stays frozen

	c := NewCountdown(time.Hour, time.Millisecond, nil)
	var ticks atomic.Int64
	onTick := func(time.Duration) { ticks.Add(1) }

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				c.Start(onTick)
				time.Sleep(time.Millisecond)
				c.Reset()
			}
		}()
	}
	wg.Wait()

	c.Start(onTick)
	time.Sleep(10 * time.Millisecond)
	c.Reset()

	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no tick MUST arrive after Reset returns")
	assert.Zero(t, c.Remaining())
}

func TestCountdown_RestartReplacesTimer(t *testing.T) {
	c := NewCountdown(time.Hour, time.Millisecond, nil)
	var first, second atomic.Int64

	c.Start(func(time.Duration) { first.Add(1) })
	time.Sleep(5 * time.Millisecond)
	c.Start(func(time.Duration) { second.Add(1) })

	frozen := first.Load()
	time.Sleep(10 * time.Millisecond)
	c.Reset()

	assert.Equal(t, frozen, first.Load(), "the replaced timer MUST stop once Start returns")
	assert.Positive(t, second.Load())
}
