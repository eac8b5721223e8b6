package link

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/puttlink/internal/decoder"
	"github.com/srg/puttlink/internal/device"
)

// State is the link lifecycle position.
type State int

const (
	Idle State = iota
	Scanning
	Connecting
	Connected
	Recording
	Disconnected // the peripheral dropped the link
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Scanning:
		return "scanning"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Recording:
		return "recording"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Options configures a Link.
type Options struct {
	ServiceUUID    string
	ControlUUID    string
	DataUUID       string
	ScanTimeout    time.Duration
	ConnectTimeout time.Duration
	ResultBuffer   int
	Codec          decoder.Codec
}

// DefaultOptions targets the analyzer firmware with base64 transport.
func DefaultOptions() Options {
	return Options{
		ServiceUUID:    device.AnalyzerServiceUUID,
		ControlUUID:    device.ControlCharUUID,
		DataUUID:       device.DataCharUUID,
		ScanTimeout:    10 * time.Second,
		ConnectTimeout: 10 * time.Second,
		ResultBuffer:   16,
		Codec:          decoder.Base64Codec{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ServiceUUID == "" {
		o.ServiceUUID = d.ServiceUUID
	}
	if o.ControlUUID == "" {
		o.ControlUUID = d.ControlUUID
	}
	if o.DataUUID == "" {
		o.DataUUID = d.DataUUID
	}
	if o.ScanTimeout <= 0 {
		o.ScanTimeout = d.ScanTimeout
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = d.ConnectTimeout
	}
	if o.ResultBuffer <= 0 {
		o.ResultBuffer = d.ResultBuffer
	}
	if o.Codec == nil {
		o.Codec = d.Codec
	}
	return o
}

// Ignored reports a failure that was deliberately not propagated, such as a
// teardown error during Disconnect.
type Ignored struct {
	Op  string
	Err error
}

func (i *Ignored) String() string {
	if i == nil {
		return "<none>"
	}
	return i.Op + ": " + i.Err.Error()
}

func (i *Ignored) log(logger *logrus.Logger) {
	logger.WithFields(logrus.Fields{
		"op":      i.Op,
		"outcome": "ignored",
	}).WithError(i.Err).Warn("Ignoring teardown failure")
}

// FrameStats counts notification outcomes since Init.
type FrameStats struct {
	Accepted     int64 `json:"accepted"`
	Malformed    int64 `json:"malformed"`
	Intermediate int64 `json:"intermediate"`
	Overwritten  int64 `json:"overwritten"`
}
