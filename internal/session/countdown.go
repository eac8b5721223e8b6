package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/puttlink/internal/groutine"
)

// Countdown is the advisory recording timer. Reaching zero only notifies;
// it never ends a session.
type Countdown struct {
	total  time.Duration
	tick   time.Duration
	now    func() time.Time
	logger *logrus.Logger

	mu        sync.Mutex
	startedAt time.Time
	running   bool
	cancel    context.CancelFunc
	done      <-chan struct{}
}

// NewCountdown creates a stopped countdown of total length ticking every tick.
func NewCountdown(total, tick time.Duration, logger *logrus.Logger) *Countdown {
	if tick <= 0 {
		tick = time.Second
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Countdown{total: total, tick: tick, now: time.Now, logger: logger}
}

// Start restarts the countdown from the full duration. onTick, if set, gets
// the remaining time on every tick and a final zero.
func (c *Countdown) Start(onTick func(remaining time.Duration)) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	prevCancel, prevDone := c.cancel, c.done
	c.startedAt = c.now()
	c.running = true
	c.cancel = cancel
	c.done = groutine.Go(ctx, "countdown", func(ctx context.Context) {
		c.run(ctx, onTick)
	})
	c.mu.Unlock()

	stopTimer(prevCancel, prevDone)
}

func (c *Countdown) run(ctx context.Context, onTick func(remaining time.Duration)) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			remaining := c.Remaining()
			if onTick != nil {
				onTick(remaining)
			}
			if remaining == 0 {
				c.logger.Info("Countdown finished, recording continues until stopped")
				return
			}
		}
	}
}

// Reset cancels the timer and zeroes the countdown. No tick is delivered
// after Reset returns.
func (c *Countdown) Reset() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.running = false
	c.startedAt = time.Time{}
	c.mu.Unlock()

	stopTimer(cancel, done)
}

func stopTimer(cancel context.CancelFunc, done <-chan struct{}) {
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Remaining is the time left, 0 when stopped or expired.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return 0
	}
	left := c.total - c.now().Sub(c.startedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Elapsed is the time since Start, 0 when stopped.
func (c *Countdown) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return 0
	}
	return c.now().Sub(c.startedAt)
}
