package device

import (
	"context"
	"errors"
	"fmt"
)

// Analyzer GATT identifiers fixed by the peripheral firmware.
const (
	AnalyzerServiceUUID = "19B10000-E8F2-537E-4F6C-D104768A1214"
	ControlCharUUID     = "19B10001-E8F2-537E-4F6C-D104768A1214" // write: START / STOP
	DataCharUUID        = "19B10002-E8F2-537E-4F6C-D104768A1214" // notify: JSON results
)

// Commands understood by the control characteristic.
const (
	CommandStart = "START"
	CommandStop  = "STOP"
)

// NotFoundError represents an error when a GATT resource is not found
type NotFoundError struct {
	Resource string   // "service", "characteristic"
	UUIDs    []string // [serviceUUID] or [serviceUUID, charUUID]
}

func (e *NotFoundError) Error() string {
	if len(e.UUIDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	if len(e.UUIDs) == 1 {
		return fmt.Sprintf("%s %q not found", e.Resource, e.UUIDs[0])
	}
	return fmt.Sprintf("%s %q not found in service %q", e.Resource, e.UUIDs[len(e.UUIDs)-1], e.UUIDs[0])
}

// ConnectionState represents the specific kind of link failure
type ConnectionState string

const (
	NotConnected      ConnectionState = "not_connected"
	AlreadyConnected  ConnectionState = "already_connected"
	NotInitialized    ConnectionState = "not_initialized"
	BluetoothOff      ConnectionState = "bluetooth_off"
	PermissionDenied  ConnectionState = "permission_denied"
	ConnectionTimeout ConnectionState = "connection_timeout"
	WriteFailed       ConnectionState = "write_failed"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrNotConnected      = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected  = &ConnectionError{State: AlreadyConnected}
	ErrNotInitialized    = &ConnectionError{State: NotInitialized}
	ErrBluetoothOff      = &ConnectionError{State: BluetoothOff}
	ErrPermissionDenied  = &ConnectionError{State: PermissionDenied}
	ErrConnectionTimeout = &ConnectionError{State: ConnectionTimeout}
	ErrWriteFailed       = &ConnectionError{State: WriteFailed}
)

// ErrUnsupported is returned where the running platform has no BLE backend.
var ErrUnsupported = errors.New("unsupported")

// IsConnectionState reports whether err is a ConnectionError with the given state
func IsConnectionState(err error, state ConnectionState) bool {
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return cerr.State == state
	}
	return false
}

// Advertisement is the subset of an advertising packet the link cares about.
type Advertisement interface {
	LocalName() string
	Services() []string
	Connectable() bool
	RSSI() int
	Addr() string
}

// Adapter is the host BLE radio: it discovers peripherals and dials them.
type Adapter interface {
	Scan(ctx context.Context, allowDup bool, handler func(Advertisement)) error
	Dial(ctx context.Context, address string) (Client, error)
}

// Client is one live GATT connection.
type Client interface {
	Address() string
	Name() string
	Subscribe(serviceUUID, charUUID string, handler func(data []byte)) error
	Write(serviceUUID, charUUID string, data []byte, withResponse bool) error
	// Disconnected is closed when the peripheral drops the link. May return nil
	// when the backend cannot report it.
	Disconnected() <-chan struct{}
	Close() error
}

// PermissionGate checks that the platform grants scan/connect access. Denial is
// reported as a single ErrPermissionDenied, never per capability.
type PermissionGate interface {
	Ensure(ctx context.Context) error
}

// GrantedGate is a PermissionGate that always allows access.
type GrantedGate struct{}

func (GrantedGate) Ensure(context.Context) error { return nil }

// PeripheralDevice is a discovered analyzer as presented to callers.
type PeripheralDevice struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	RSSI      *int   `json:"rssi,omitempty"`
}

// DisplayName falls back to a placeholder for unnamed peripherals.
func (d PeripheralDevice) DisplayName() string {
	if d.Name == "" {
		return "Unknown Device"
	}
	return d.Name
}
