package main

import (
	"errors"

	"github.com/srg/puttlink/internal/device"
)

// Command-level errors
var (
	// ErrConnectionLost indicates the analyzer dropped the link while recording.
	ErrConnectionLost = errors.New("connection lost")

	// ErrNoAnalyzer indicates a scan found nothing to connect to.
	ErrNoAnalyzer = errors.New("no analyzer found")
)

// FormatUserError turns an error chain into a message for the terminal.
func FormatUserError(err error) string {
	if err == nil {
		return ""
	}

	var nf *device.NotFoundError
	switch {
	case errors.Is(err, device.ErrPermissionDenied):
		return "Bluetooth permission denied. Grant Bluetooth access to this terminal and try again."
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is turned off. Turn it on and try again."
	case errors.Is(err, device.ErrConnectionTimeout):
		return "Timed out connecting to the analyzer. Make sure it is powered on and in range."
	case errors.Is(err, device.ErrNotConnected):
		return "Not connected to an analyzer."
	case errors.Is(err, device.ErrAlreadyConnected):
		return "Already connected to another analyzer."
	case errors.Is(err, device.ErrWriteFailed):
		return "The analyzer did not accept the command (" + err.Error() + ")."
	case errors.Is(err, ErrConnectionLost):
		return "Connection to the analyzer was lost."
	case errors.Is(err, ErrNoAnalyzer):
		return "No analyzer found. Make sure it is powered on and advertising."
	case errors.Is(err, device.ErrUnsupported):
		return "Bluetooth is not supported on this platform."
	case errors.As(err, &nf):
		return "The device does not look like an analyzer (" + nf.Error() + ")."
	}
	return err.Error()
}
