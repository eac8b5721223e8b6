package goble

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	ble "github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/puttlink/internal/device"
)

// Adapter implements device.Adapter and device.PermissionGate on top of the
// host go-ble device. The platform device is created lazily on first use and
// cached once it has been obtained.
type Adapter struct {
	mu     sync.Mutex
	dev    ble.Device
	logger *logrus.Logger
}

// NewAdapter creates an Adapter. No radio access happens until Ensure, Scan or Dial.
func NewAdapter(logger *logrus.Logger) *Adapter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Adapter{logger: logger}
}

// Ensure obtains the platform BLE device. Any failure to do so (radio off,
// missing authorization) is reported as device.ErrPermissionDenied.
func (a *Adapter) Ensure(_ context.Context) error {
	_, err := a.hostDevice()
	return err
}

func (a *Adapter) hostDevice() (ble.Device, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev != nil {
		return a.dev, nil
	}

	dev, err := DeviceFactory()
	if err != nil {
		err = NormalizeError(err)
		a.logger.WithError(err).Warn("BLE host device unavailable")
		if errors.Is(err, device.ErrPermissionDenied) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", device.ErrPermissionDenied, err)
	}
	a.dev = dev
	return dev, nil
}

// Scan wraps the raw ble.Device.Scan to convert ble.Advertisement to the device.Advertisement
func (a *Adapter) Scan(ctx context.Context, allowDup bool, handler func(device.Advertisement)) error {
	dev, err := a.hostDevice()
	if err != nil {
		return err
	}

	bleHandler := func(adv ble.Advertisement) {
		handler(NewBLEAdvertisement(adv))
	}
	if err := dev.Scan(ctx, allowDup, bleHandler); err != nil {
		return NormalizeError(err)
	}
	return nil
}

// Dial connects to the peripheral at address and discovers its GATT profile.
func (a *Adapter) Dial(ctx context.Context, address string) (device.Client, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("device address is empty")
	}

	dev, err := a.hostDevice()
	if err != nil {
		return nil, err
	}

	a.logger.WithField("address", address).Debug("Dialing BLE device...")
	cln, err := dev.Dial(ctx, ble.NewAddr(address))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, NormalizeError(ctxErr)
		}
		return nil, fmt.Errorf("failed to connect to device with address %q: %w", address, NormalizeError(err))
	}

	a.logger.WithField("address", address).Debug("Discovering services and characteristics...")
	profile, err := cln.DiscoverProfile(true)
	if err != nil {
		if cancelErr := cln.CancelConnection(); cancelErr != nil {
			a.logger.WithField("cancel_error", cancelErr).Warn("Failed to cancel connection during profile discovery failure")
		}
		return nil, fmt.Errorf("failed to discover profile: %w", NormalizeError(err))
	}

	a.logger.WithFields(logrus.Fields{
		"address":  address,
		"services": len(profile.Services),
	}).Debug("Profile discovered successfully")

	return newClient(cln, profile, a.logger), nil
}
