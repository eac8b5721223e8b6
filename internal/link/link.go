// Package link owns the single BLE connection to an analyzer: discovery,
// connect/disconnect, control writes and result delivery.
package link

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/puttlink/internal/decoder"
	"github.com/srg/puttlink/internal/device"
	"github.com/srg/puttlink/internal/groutine"
	"github.com/srg/puttlink/internal/ringchan"
)

// Link is an explicit, owned connection session. Create with New, call Init
// before use and Dispose when done.
type Link struct {
	adapter device.Adapter
	gate    device.PermissionGate
	opts    Options
	decoder *decoder.Decoder
	logger  *logrus.Logger

	mu          sync.Mutex
	state       State
	initialized bool
	disposed    bool
	devices     *hashmap.Map[string, *device.PeripheralDevice]
	order       []string
	client      device.Client
	current     string
	recording   bool
	scanCancel  context.CancelFunc
	monitorStop chan struct{}
	resetHooks  []func()
	results     *ringchan.RingChannel[decoder.Result]
	stats       FrameStats
}

// New creates a Link. A nil gate grants every request.
func New(adapter device.Adapter, gate device.PermissionGate, opts Options, logger *logrus.Logger) *Link {
	if logger == nil {
		logger = logrus.New()
	}
	if gate == nil {
		gate = device.GrantedGate{}
	}
	opts = opts.withDefaults()

	return &Link{
		adapter: adapter,
		gate:    gate,
		opts:    opts,
		decoder: decoder.New(opts.Codec, logger),
		logger:  logger,
		devices: hashmap.New[string, *device.PeripheralDevice](),
		results: ringchan.New[decoder.Result](opts.ResultBuffer),
	}
}

// Init makes the link usable. It does not touch the radio.
func (l *Link) Init(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disposed {
		return fmt.Errorf("%w: link disposed", device.ErrNotInitialized)
	}
	if l.adapter == nil {
		return fmt.Errorf("%w: no BLE adapter", device.ErrNotInitialized)
	}
	l.initialized = true
	l.state = Idle
	return nil
}

// Dispose disconnects and closes the result channel. Safe to call twice.
func (l *Link) Dispose() {
	l.Disconnect()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disposed {
		return
	}
	l.disposed = true
	l.initialized = false
	l.results.Close()
	l.logger.Debug("Link disposed")
}

// OnReset registers fn to run after every local reset (Disconnect or a
// dropped link). Hooks run outside the link lock.
func (l *Link) OnReset(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetHooks = append(l.resetHooks, fn)
}

// Connect dials the peripheral, subscribes to its result characteristic and
// marks it as the one connected device.
func (l *Link) Connect(ctx context.Context, id string) error {
	if err := l.ensureReady(ctx); err != nil {
		return err
	}

	l.mu.Lock()
	switch {
	case l.client != nil && l.current == id:
		l.mu.Unlock()
		return nil
	case l.client != nil:
		current := l.current
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", device.ErrAlreadyConnected, current)
	case l.state == Connecting:
		l.mu.Unlock()
		return errors.New("connect already in progress")
	}
	if l.scanCancel != nil {
		l.scanCancel()
	}
	l.state = Connecting
	l.mu.Unlock()

	logger := l.logger.WithFields(logrus.Fields{
		"device":  id,
		"timeout": l.opts.ConnectTimeout,
	})
	logger.Info("Connecting to analyzer...")

	dialCtx, cancel := context.WithTimeout(ctx, l.opts.ConnectTimeout)
	defer cancel()

	client, err := l.adapter.Dial(dialCtx, id)
	if err != nil {
		l.settle()
		if errors.Is(dialCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			logger.Warn("Connection timed out")
			return fmt.Errorf("%w: no link to %s within %s", device.ErrConnectionTimeout, id, l.opts.ConnectTimeout)
		}
		return fmt.Errorf("connect %s: %w", id, err)
	}

	if err := client.Subscribe(l.opts.ServiceUUID, l.opts.DataUUID, l.notificationHandler(client)); err != nil {
		if cerr := client.Close(); cerr != nil {
			(&Ignored{Op: "close after subscribe failure", Err: cerr}).log(l.logger)
		}
		l.settle()
		return fmt.Errorf("subscribe to results: %w", err)
	}

	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		_ = client.Close()
		return fmt.Errorf("%w: link disposed", device.ErrNotInitialized)
	}
	l.client = client
	l.current = id
	l.recording = false
	l.markConnectedLocked(id, client.Name())
	l.state = Connected
	stop := make(chan struct{})
	l.monitorStop = stop
	l.mu.Unlock()

	if dropped := client.Disconnected(); dropped != nil {
		groutine.Go(context.Background(), "link-drop-monitor", func(context.Context) {
			select {
			case <-dropped:
				l.handleDrop(client)
			case <-stop:
			}
		})
	}

	logger.Info("Connected to analyzer")
	return nil
}

// Disconnect always resets local state. A teardown error is returned as an
// Ignored outcome (nil when teardown was clean or nothing was connected).
func (l *Link) Disconnect() *Ignored {
	l.mu.Lock()
	client := l.client
	hooks := l.resetLocked(Idle)
	l.mu.Unlock()

	runHooks(hooks)

	if client == nil {
		return nil
	}
	if err := client.Close(); err != nil {
		ign := &Ignored{Op: "disconnect", Err: err}
		ign.log(l.logger)
		return ign
	}
	l.logger.WithField("device", client.Address()).Info("Disconnected from analyzer")
	return nil
}

// Send writes cmd to the control characteristic and waits for the write
// response. It is a no-op when nothing is connected.
func (l *Link) Send(ctx context.Context, cmd string) error {
	l.mu.Lock()
	client := l.client
	l.mu.Unlock()

	if client == nil {
		l.logger.WithField("command", cmd).Debug("Not connected, command ignored")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	payload := l.decoder.Codec().Encode(cmd)
	if err := client.Write(l.opts.ServiceUUID, l.opts.ControlUUID, payload, true); err != nil {
		l.logger.WithError(err).WithField("command", cmd).Warn("Control write failed")
		return fmt.Errorf("%w: command %q: %w", device.ErrWriteFailed, cmd, err)
	}

	l.logger.WithField("command", cmd).Debug("Command sent")
	return nil
}

// SetRecording toggles the recording flag. Turning it on requires a connection.
func (l *Link) SetRecording(on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if on && l.client == nil {
		return device.ErrNotConnected
	}
	l.recording = on
	if l.state != Scanning {
		l.state = l.settledStateLocked()
	}
	return nil
}

// Results delivers accepted classification results. When the consumer falls
// behind, the oldest buffered result is dropped. Closed by Dispose.
func (l *Link) Results() <-chan decoder.Result {
	return l.results.C()
}

// TryResult returns a buffered result without blocking.
func (l *Link) TryResult() (decoder.Result, bool) {
	return l.results.TryReceive()
}

func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Link) IsConnected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.client != nil
}

func (l *Link) IsRecording() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recording
}

// CurrentDevice returns the connected device, if any.
func (l *Link) CurrentDevice() (device.PeripheralDevice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client == nil {
		return device.PeripheralDevice{}, false
	}
	if dev, ok := l.devices.Get(l.current); ok {
		return *dev, true
	}
	return device.PeripheralDevice{ID: l.current, Connected: true}, true
}

// FrameStats returns notification counters.
func (l *Link) FrameStats() FrameStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.Overwritten = l.results.Overwritten()
	return s
}

func (l *Link) ensureReady(ctx context.Context) error {
	l.mu.Lock()
	ready := l.initialized && !l.disposed
	l.mu.Unlock()
	if !ready {
		return device.ErrNotInitialized
	}

	if err := l.gate.Ensure(ctx); err != nil {
		if errors.Is(err, device.ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("%w: %w", device.ErrPermissionDenied, err)
	}
	return nil
}

func (l *Link) notificationHandler(client device.Client) func([]byte) {
	return func(data []byte) {
		res, outcome := l.decoder.Decode(data)

		l.mu.Lock()
		defer l.mu.Unlock()
		if l.disposed || l.client != client {
			return
		}

		switch outcome {
		case decoder.SkippedMalformed:
			l.stats.Malformed++
		case decoder.SkippedIntermediate:
			l.stats.Intermediate++
		case decoder.Accepted:
			l.stats.Accepted++
			if l.results.Send(res) {
				l.logger.Warn("Result consumer is behind, dropped oldest result")
			}
		}
	}
}

func (l *Link) handleDrop(client device.Client) {
	l.mu.Lock()
	if l.client != client {
		l.mu.Unlock()
		return
	}
	hooks := l.resetLocked(Disconnected)
	l.mu.Unlock()

	l.logger.WithField("device", client.Address()).Warn("Analyzer dropped the connection")
	runHooks(hooks)

	if err := client.Close(); err != nil {
		(&Ignored{Op: "close after drop", Err: err}).log(l.logger)
	}
}

// resetLocked clears connection and recording flags, cancels a running scan
// and the drop monitor, and returns the hooks to run once unlocked.
func (l *Link) resetLocked(next State) []func() {
	if l.scanCancel != nil {
		l.scanCancel()
		l.scanCancel = nil
	}
	if l.monitorStop != nil {
		close(l.monitorStop)
		l.monitorStop = nil
	}
	if l.client == nil && next == Disconnected {
		next = Idle
	}

	l.client = nil
	l.current = ""
	l.recording = false
	l.devices.Range(func(_ string, dev *device.PeripheralDevice) bool {
		dev.Connected = false
		return true
	})
	if l.initialized {
		l.state = next
	}
	return append([]func(){}, l.resetHooks...)
}

func (l *Link) markConnectedLocked(id, name string) {
	dev, ok := l.devices.Get(id)
	if !ok {
		dev = &device.PeripheralDevice{ID: id, Name: name}
		l.devices.Set(id, dev)
		l.order = append(l.order, id)
	}
	l.devices.Range(func(key string, d *device.PeripheralDevice) bool {
		d.Connected = key == id
		return true
	})
	if dev.Name == "" {
		dev.Name = name
	}
}

func (l *Link) settledStateLocked() State {
	switch {
	case l.client != nil && l.recording:
		return Recording
	case l.client != nil:
		return Connected
	default:
		return Idle
	}
}

// settle leaves a transient state once an operation finishes.
func (l *Link) settle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Connecting || l.state == Scanning {
		l.state = l.settledStateLocked()
	}
}

func runHooks(hooks []func()) {
	for _, h := range hooks {
		h()
	}
}
