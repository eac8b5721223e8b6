//go:build !darwin && !linux

package goble

import (
	"fmt"
	"runtime"

	ble "github.com/go-ble/ble"
	"github.com/srg/puttlink/internal/device"
)

func newPlatformDevice() (ble.Device, error) {
	return nil, fmt.Errorf("%w: no BLE backend for %s", device.ErrUnsupported, runtime.GOOS)
}
