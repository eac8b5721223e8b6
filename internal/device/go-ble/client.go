package goble

import (
	"fmt"
	"sync"

	ble "github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/puttlink/internal/device"
)

// client adapts a connected ble.Client and its discovered profile to device.Client.
type client struct {
	cln     ble.Client
	profile *ble.Profile
	logger  *logrus.Logger

	writeMutex sync.Mutex
	subscribed []*ble.Characteristic
	subMu      sync.Mutex
}

func newClient(cln ble.Client, profile *ble.Profile, logger *logrus.Logger) *client {
	return &client{cln: cln, profile: profile, logger: logger}
}

func (c *client) Address() string {
	if addr := c.cln.Addr(); addr != nil {
		return addr.String()
	}
	return ""
}

func (c *client) Name() string { return c.cln.Name() }

// Subscribe enables notifications (or indications when that is all the
// characteristic offers) and forwards each payload to handler.
func (c *client) Subscribe(serviceUUID, charUUID string, handler func(data []byte)) error {
	char, err := findCharacteristic(c.profile, serviceUUID, charUUID)
	if err != nil {
		return err
	}

	var indicate bool
	switch {
	case char.Property&ble.CharNotify != 0:
	case char.Property&ble.CharIndicate != 0:
		indicate = true
	default:
		return fmt.Errorf("characteristic %s does not support notifications: %w", charUUID, device.ErrUnsupported)
	}

	if err := c.cln.Subscribe(char, indicate, ble.NotificationHandler(handler)); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", charUUID, NormalizeError(err))
	}

	c.subMu.Lock()
	c.subscribed = append(c.subscribed, char)
	c.subMu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"serviceUUID": serviceUUID,
		"charUUID":    charUUID,
		"indicate":    indicate,
	}).Info("Subscribed to characteristic notifications")
	return nil
}

// Write sends data to the characteristic, waiting for the ATT acknowledgment
// when withResponse is set.
func (c *client) Write(serviceUUID, charUUID string, data []byte, withResponse bool) error {
	char, err := findCharacteristic(c.profile, serviceUUID, charUUID)
	if err != nil {
		return err
	}

	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()

	if err := c.cln.WriteCharacteristic(char, data, !withResponse); err != nil {
		return fmt.Errorf("failed to write to characteristic %s in service %s: %w", charUUID, serviceUUID, NormalizeError(err))
	}
	return nil
}

func (c *client) Disconnected() <-chan struct{} {
	if dc, ok := c.cln.(interface{ Disconnected() <-chan struct{} }); ok {
		return dc.Disconnected()
	}
	c.logger.Debug("Client does not support Disconnected() channel")
	return nil
}

// Close unsubscribes best-effort and cancels the connection. Only the
// CancelConnection error is returned.
func (c *client) Close() error {
	c.subMu.Lock()
	subs := c.subscribed
	c.subscribed = nil
	c.subMu.Unlock()

	for _, char := range subs {
		if err := c.cln.Unsubscribe(char, false); err != nil {
			c.logger.WithFields(logrus.Fields{
				"charUUID": char.UUID.String(),
				"error":    err,
			}).Debug("Failed to unsubscribe during close")
		}
	}
	return NormalizeError(c.cln.CancelConnection())
}

// findCharacteristic looks a characteristic up in a discovered profile.
// Returns a NotFoundError if the service or characteristic is not found.
func findCharacteristic(profile *ble.Profile, serviceUUID, charUUID string) (*ble.Characteristic, error) {
	if profile == nil {
		return nil, &device.NotFoundError{Resource: "service", UUIDs: []string{serviceUUID}}
	}
	for _, svc := range profile.Services {
		if !device.EqualUUID(svc.UUID.String(), serviceUUID) {
			continue
		}
		for _, char := range svc.Characteristics {
			if device.EqualUUID(char.UUID.String(), charUUID) {
				return char, nil
			}
		}
		return nil, &device.NotFoundError{Resource: "characteristic", UUIDs: []string{serviceUUID, charUUID}}
	}
	return nil, &device.NotFoundError{Resource: "service", UUIDs: []string{serviceUUID}}
}
