package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/puttlink/internal/decoder"
	"github.com/srg/puttlink/internal/device"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "panic", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.Countdown)
	assert.Equal(t, device.AnalyzerServiceUUID, cfg.ServiceUUID)
	assert.Equal(t, device.ControlCharUUID, cfg.ControlUUID)
	assert.Equal(t, device.DataCharUUID, cfg.DataUUID)
	assert.Equal(t, "base64", cfg.Encoding)
	assert.Equal(t, 16, cfg.ResultBuffer)
	assert.Equal(t, "file", cfg.Storage)
	assert.Equal(t, "puttHistory", cfg.HistoryKey)
	assert.True(t, cfg.AutoSave)
	assert.False(t, cfg.AutoConnect)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_NewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected logrus.Level
	}{
		{name: "creates logger with debug level", logLevel: "debug", expected: logrus.DebugLevel},
		{name: "creates logger with info level", logLevel: "info", expected: logrus.InfoLevel},
		{name: "creates logger with warn level", logLevel: "warn", expected: logrus.WarnLevel},
		{name: "creates logger with error level", logLevel: "error", expected: logrus.ErrorLevel},
		{name: "falls back to silent on garbage", logLevel: "loud", expected: logrus.PanicLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}

			logger := cfg.NewLogger()

			assert.NotNil(t, logger)
			assert.Equal(t, tt.expected, logger.GetLevel())

			// Verify formatter is set correctly
			formatter, ok := logger.Formatter.(*logrus.TextFormatter)
			assert.True(t, ok)
			assert.True(t, formatter.FullTimestamp)
			assert.Equal(t, time.RFC3339, formatter.TimestampFormat)
		})
	}
}

func TestLoad_OverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "puttlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
scan_timeout: 3s
countdown: 8s
encoding: raw
storage: sqlite
data_dir: /tmp/putts
auto_save: false
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ScanTimeout)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout, "unset keys MUST keep defaults")
	assert.Equal(t, 8*time.Second, cfg.Countdown)
	assert.Equal(t, "raw", cfg.Encoding)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, "/tmp/putts", cfg.DataDir)
	assert.False(t, cfg.AutoSave)

	opts, err := cfg.LinkOptions()
	require.NoError(t, err)
	assert.Equal(t, decoder.RawCodec{}, opts.Codec)
	assert.Equal(t, 3*time.Second, opts.ScanTimeout)

	sess := cfg.SessionOptions()
	assert.Equal(t, 8*time.Second, sess.Countdown)
	assert.False(t, sess.AutoSave)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("scan_timeout: [1, 2"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("encoding: hex\nstorage: redis\nresult_buffer: 0\n"), 0o600))
	_, err = Load(invalid)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown transport encoding")
	assert.ErrorContains(t, err, "storage")
	assert.ErrorContains(t, err, "result_buffer")
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_OpenStorage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage = "memory"
	blob, err := cfg.OpenStorage()
	require.NoError(t, err)
	assert.NoError(t, blob.Close())
	assert.Equal(t, "puttHistory", cfg.HistoryKeyOrDefault())

	cfg.HistoryKey = ""
	assert.Equal(t, "puttHistory", cfg.HistoryKeyOrDefault())
}
