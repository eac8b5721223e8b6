package link

import (
	"context"
	"errors"
	"fmt"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/puttlink/internal/device"
)

// Scan discovers analyzers for the configured scan window, replacing the
// previous results. Repeated advertisements of one device refresh its entry.
// onFound, if set, is called once per newly discovered device.
func (l *Link) Scan(ctx context.Context, onFound func(device.PeripheralDevice)) ([]device.PeripheralDevice, error) {
	if err := l.ensureReady(ctx); err != nil {
		return nil, err
	}

	l.mu.Lock()
	switch l.state {
	case Scanning, Connecting:
		state := l.state
		l.mu.Unlock()
		return nil, fmt.Errorf("cannot scan while %s", state)
	}
	scanCtx, cancel := context.WithTimeout(ctx, l.opts.ScanTimeout)
	defer cancel()

	l.devices = l.freshDevicesLocked()
	l.scanCancel = cancel
	l.state = Scanning
	l.mu.Unlock()

	l.logger.WithFields(logrus.Fields{
		"duration": l.opts.ScanTimeout,
		"service":  l.opts.ServiceUUID,
	}).Info("Starting BLE scan...")

	err := l.adapter.Scan(scanCtx, true, func(adv device.Advertisement) {
		l.handleAdvertisement(adv, onFound)
	})

	l.mu.Lock()
	l.scanCancel = nil
	if l.state == Scanning {
		l.state = l.settledStateLocked()
	}
	l.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) &&
		!device.IsConnectionState(err, device.ConnectionTimeout) {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	devices := l.Devices()
	l.logger.WithField("device_count", len(devices)).Info("BLE scan completed")
	return devices, nil
}

// Devices returns the discovered devices in discovery order.
func (l *Link) Devices() []device.PeripheralDevice {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]device.PeripheralDevice, 0, len(l.order))
	for _, id := range l.order {
		if dev, ok := l.devices.Get(id); ok {
			out = append(out, *dev)
		}
	}
	return out
}

// freshDevicesLocked drops prior results but keeps the connected device.
func (l *Link) freshDevicesLocked() *hashmap.Map[string, *device.PeripheralDevice] {
	fresh := hashmap.New[string, *device.PeripheralDevice]()
	l.order = nil
	if l.client != nil {
		if dev, ok := l.devices.Get(l.current); ok {
			fresh.Set(l.current, dev)
			l.order = append(l.order, l.current)
		}
	}
	return fresh
}

func (l *Link) handleAdvertisement(adv device.Advertisement, onFound func(device.PeripheralDevice)) {
	if !l.matchesService(adv) {
		return
	}

	id := adv.Addr()
	rssi := adv.RSSI()

	l.mu.Lock()
	if l.state != Scanning {
		l.mu.Unlock()
		return
	}
	dev, existing := l.devices.Get(id)
	if !existing {
		dev, existing = l.devices.GetOrInsert(id, &device.PeripheralDevice{ID: id})
		if !existing {
			l.order = append(l.order, id)
		}
	}
	if name := adv.LocalName(); name != "" {
		dev.Name = name
	}
	dev.RSSI = &rssi
	snapshot := *dev
	l.mu.Unlock()

	if existing {
		return
	}

	l.logger.WithFields(logrus.Fields{
		"device":  snapshot.DisplayName(),
		"address": id,
		"rssi":    rssi,
	}).Info("Discovered analyzer")

	if onFound != nil {
		onFound(snapshot)
	}
}

func (l *Link) matchesService(adv device.Advertisement) bool {
	if l.opts.ServiceUUID == "" {
		return true
	}
	for _, svc := range adv.Services() {
		if device.EqualUUID(svc, l.opts.ServiceUUID) {
			return true
		}
	}
	return false
}
