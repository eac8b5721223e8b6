// Package session coordinates one recording window on a connected analyzer
// and saves its outcome to history.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/puttlink/internal/decoder"
	"github.com/srg/puttlink/internal/device"
	"github.com/srg/puttlink/internal/groutine"
	"github.com/srg/puttlink/internal/history"
)

// Link is the part of the peripheral link the controller drives.
type Link interface {
	IsConnected() bool
	SetRecording(on bool) error
	Send(ctx context.Context, cmd string) error
	Results() <-chan decoder.Result
	TryResult() (decoder.Result, bool)
	OnReset(fn func())
}

// Recorder persists stroke outcomes.
type Recorder interface {
	Append(ctx context.Context, label string, confidence float64, recordedAt time.Time) (history.Record, error)
}

// Options configures a Controller.
type Options struct {
	Countdown time.Duration
	Tick      time.Duration
	AutoSave  bool
	OnResult  func(decoder.Result)
	OnTick    func(remaining time.Duration)
}

// StopResult describes what Stop saw and saved.
type StopResult struct {
	Result *decoder.Result
	Record *history.Record
}

// Controller runs recording windows. Results are consumed from the link by
// a background pump; the latest result received while recording wins.
type Controller struct {
	link      Link
	history   Recorder
	opts      Options
	countdown *Countdown
	now       func() time.Time
	logger    *logrus.Logger

	mu        sync.Mutex
	recording bool
	captured  *decoder.Result
	last      *decoder.Result

	cancelPump context.CancelFunc
	pumpDone   <-chan struct{}
}

// New creates a Controller and starts its result pump. A nil history
// disables saving.
func New(link Link, hist Recorder, opts Options, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	c := &Controller{
		link:      link,
		history:   hist,
		opts:      opts,
		countdown: NewCountdown(opts.Countdown, opts.Tick, logger),
		now:       time.Now,
		logger:    logger,
	}

	link.OnReset(c.reset)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelPump = cancel
	c.pumpDone = groutine.Go(ctx, "result-pump", c.pump)
	return c
}

// Close stops the result pump and the countdown.
func (c *Controller) Close() {
	c.cancelPump()
	<-c.pumpDone
	c.countdown.Reset()
}

// Start begins a recording window. The link must be connected. If sending
// START fails the error is returned and recording stays set.
func (c *Controller) Start(ctx context.Context) error {
	if !c.link.IsConnected() {
		return device.ErrNotConnected
	}
	if err := c.link.SetRecording(true); err != nil {
		return err
	}

	c.mu.Lock()
	c.recording = true
	c.captured = nil
	for {
		if _, ok := c.link.TryResult(); !ok {
			break
		}
	}
	c.mu.Unlock()

	c.countdown.Start(c.opts.OnTick)
	c.logger.WithField("countdown", c.opts.Countdown).Info("Recording started")

	if err := c.link.Send(ctx, device.CommandStart); err != nil {
		c.logger.WithError(err).Warn("START command failed, recording flag left set")
		return fmt.Errorf("start recording: %w", err)
	}
	return nil
}

// Stop ends the recording window. Local state is always reset before STOP is
// sent. A result with a prediction received since Start is saved stamped with
// the stop time.
func (c *Controller) Stop(ctx context.Context) (StopResult, error) {
	stoppedAt := c.now()

	c.mu.Lock()
	if c.recording {
		c.drainLocked()
	}
	c.recording = false
	captured := c.captured
	c.captured = nil
	c.mu.Unlock()

	c.countdown.Reset()
	_ = c.link.SetRecording(false)

	sendErr := c.link.Send(ctx, device.CommandStop)
	if sendErr != nil {
		c.logger.WithError(sendErr).Warn("STOP command failed")
		sendErr = fmt.Errorf("stop recording: %w", sendErr)
	}

	out := StopResult{Result: captured}
	if captured == nil {
		c.logger.Info("Recording stopped without a result")
		return out, sendErr
	}

	logger := c.logger.WithFields(logrus.Fields{
		"label":      captured.Label,
		"confidence": captured.Confidence,
	})
	if captured.Label == "" {
		logger.Info("Recording stopped, result has no prediction and is not saved")
		return out, sendErr
	}
	if !c.opts.AutoSave || c.history == nil {
		logger.Info("Recording stopped, auto-save disabled")
		return out, sendErr
	}

	rec, err := c.history.Append(ctx, captured.Label, captured.Confidence, stoppedAt)
	if err != nil {
		logger.WithError(err).Warn("Failed to persist history record")
	}
	if rec.ID != "" {
		out.Record = &rec
	}
	logger.WithField("id", rec.ID).Info("Recording stopped, result saved")
	return out, sendErr
}

func (c *Controller) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// LastResult is the most recent result seen, recording or not.
func (c *Controller) LastResult() (decoder.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return decoder.Result{}, false
	}
	return *c.last, true
}

// Remaining is the advisory countdown value.
func (c *Controller) Remaining() time.Duration { return c.countdown.Remaining() }

// Elapsed is the time since Start, 0 when not recording.
func (c *Controller) Elapsed() time.Duration { return c.countdown.Elapsed() }

func (c *Controller) pump(ctx context.Context) {
	results := c.link.Results()
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-results:
			if !ok {
				return
			}
			c.observe(res)
		}
	}
}

func (c *Controller) observe(res decoder.Result) {
	c.mu.Lock()
	c.recordLocked(res)
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"label":      res.Label,
		"confidence": res.Confidence,
	}).Debug("Result received")

	if c.opts.OnResult != nil {
		c.opts.OnResult(res)
	}
}

func (c *Controller) recordLocked(res decoder.Result) {
	r := res
	c.last = &r
	if c.recording {
		c.captured = &r
	}
}

// drainLocked picks up results the pump has not consumed yet.
func (c *Controller) drainLocked() {
	for {
		res, ok := c.link.TryResult()
		if !ok {
			return
		}
		c.recordLocked(res)
	}
}

func (c *Controller) reset() {
	c.mu.Lock()
	was := c.recording
	c.recording = false
	c.captured = nil
	c.mu.Unlock()

	c.countdown.Reset()
	if was {
		c.logger.Info("Link reset, recording cleared")
	}
}
