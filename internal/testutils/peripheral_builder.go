package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/srg/puttlink/internal/device"
	"github.com/srg/puttlink/internal/testutils/mocks"
)

// PeripheralBuilder assembles a mocked adapter with one analyzer behind it.
//
//	p := testutils.NewPeripheralBuilder(t).
//	    WithAddress("AA:BB:CC:DD:EE:FF").
//	    WithAdvertisements(adv1, adv2).
//	    WithWriteError(errors.New("gatt: write failed")).
//	    Build()
//	l := link.New(p.Adapter, nil, link.DefaultOptions(), logger)
//	...
//	p.Notify(payload) // deliver a notification to the subscribed handler
type PeripheralBuilder struct {
	t            *testing.T
	address      string
	name         string
	ads          []device.Advertisement
	scanErr      error
	dialErr      error
	dialBlocks   bool
	subscribeErr error
	writeErr     error
	closeErr     error
	noDropSignal bool
}

// NewPeripheralBuilder creates a builder for a reachable, well-behaved analyzer.
func NewPeripheralBuilder(t *testing.T) *PeripheralBuilder {
	return &PeripheralBuilder{
		t:       t,
		address: "AA:BB:CC:DD:EE:FF",
		name:    "PuttAnalyzer",
	}
}

func (b *PeripheralBuilder) WithAddress(addr string) *PeripheralBuilder {
	b.address = addr
	return b
}

func (b *PeripheralBuilder) WithName(name string) *PeripheralBuilder {
	b.name = name
	return b
}

// WithAdvertisements sets what Scan reports, in order.
func (b *PeripheralBuilder) WithAdvertisements(ads ...device.Advertisement) *PeripheralBuilder {
	b.ads = append(b.ads, ads...)
	return b
}

func (b *PeripheralBuilder) WithScanError(err error) *PeripheralBuilder {
	b.scanErr = err
	return b
}

func (b *PeripheralBuilder) WithDialError(err error) *PeripheralBuilder {
	b.dialErr = err
	return b
}

// WithUnresponsiveDial makes Dial block until its context expires.
func (b *PeripheralBuilder) WithUnresponsiveDial() *PeripheralBuilder {
	b.dialBlocks = true
	return b
}

func (b *PeripheralBuilder) WithSubscribeError(err error) *PeripheralBuilder {
	b.subscribeErr = err
	return b
}

func (b *PeripheralBuilder) WithWriteError(err error) *PeripheralBuilder {
	b.writeErr = err
	return b
}

func (b *PeripheralBuilder) WithCloseError(err error) *PeripheralBuilder {
	b.closeErr = err
	return b
}

// WithoutDropSignal makes the client report no disconnect channel.
func (b *PeripheralBuilder) WithoutDropSignal() *PeripheralBuilder {
	b.noDropSignal = true
	return b
}

// Build wires the mocks.
func (b *PeripheralBuilder) Build() *MockPeripheral {
	p := &MockPeripheral{
		Adapter: &mocks.MockAdapter{},
		Client:  &mocks.MockClient{},
		dropped: make(chan struct{}),
	}

	p.Adapter.On("Scan", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			handler := args.Get(2).(func(device.Advertisement))
			for _, adv := range b.ads {
				if ctx.Err() != nil {
					return
				}
				handler(adv)
			}
		}).
		Return(b.scanErr).Maybe()

	switch {
	case b.dialBlocks:
		p.Adapter.On("Dial", mock.Anything, b.address).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return(nil, context.DeadlineExceeded).Maybe()
	case b.dialErr != nil:
		p.Adapter.On("Dial", mock.Anything, b.address).Return(nil, b.dialErr).Maybe()
	default:
		p.Adapter.On("Dial", mock.Anything, b.address).Return(p.Client, nil).Maybe()
	}

	p.Client.On("Address").Return(b.address).Maybe()
	p.Client.On("Name").Return(b.name).Maybe()
	p.Client.On("Subscribe", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.handler = args.Get(2).(func([]byte))
		}).
		Return(b.subscribeErr).Maybe()
	p.Client.On("Write", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			p.mu.Lock()
			defer p.mu.Unlock()
			p.writes = append(p.writes, append([]byte(nil), args.Get(2).([]byte)...))
		}).
		Return(b.writeErr).Maybe()
	if b.noDropSignal {
		p.Client.On("Disconnected").Return(nil).Maybe()
	} else {
		p.Client.On("Disconnected").Return(p.dropped).Maybe()
	}
	p.Client.On("Close").Return(b.closeErr).Maybe()

	return p
}

// MockPeripheral is a built analyzer double.
type MockPeripheral struct {
	Adapter *mocks.MockAdapter
	Client  *mocks.MockClient

	mu       sync.Mutex
	handler  func([]byte)
	writes   [][]byte
	dropped  chan struct{}
	dropOnce sync.Once
}

// Notify delivers data to the subscribed notification handler.
// Reports false when nothing has subscribed.
func (p *MockPeripheral) Notify(data []byte) bool {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h == nil {
		return false
	}
	h(data)
	return true
}

// Writes returns every payload written to the control characteristic.
func (p *MockPeripheral) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.writes...)
}

// Drop simulates the peripheral terminating the link.
func (p *MockPeripheral) Drop() {
	p.dropOnce.Do(func() { close(p.dropped) })
}

// Eventually polls cond until it holds or the timeout elapses.
func Eventually(cond func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
