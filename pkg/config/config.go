package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/srg/puttlink/internal/decoder"
	"github.com/srg/puttlink/internal/history"
	"github.com/srg/puttlink/internal/kv"
	"github.com/srg/puttlink/internal/link"
	"github.com/srg/puttlink/internal/session"
)

// Config holds application configuration
type Config struct {
	LogLevel string `yaml:"log_level" json:"log_level" default:"panic"`

	ScanTimeout    time.Duration `yaml:"scan_timeout" json:"scan_timeout" default:"10s"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout" default:"10s"`
	Countdown      time.Duration `yaml:"countdown" json:"countdown" default:"5s"`

	ServiceUUID string `yaml:"service_uuid" json:"service_uuid" default:"19B10000-E8F2-537E-4F6C-D104768A1214"`
	ControlUUID string `yaml:"control_uuid" json:"control_uuid" default:"19B10001-E8F2-537E-4F6C-D104768A1214"`
	DataUUID    string `yaml:"data_uuid" json:"data_uuid" default:"19B10002-E8F2-537E-4F6C-D104768A1214"`
	Encoding    string `yaml:"encoding" json:"encoding" default:"base64"` // base64, raw

	ResultBuffer int `yaml:"result_buffer" json:"result_buffer" default:"16"`

	Storage    string `yaml:"storage" json:"storage" default:"file"` // file, sqlite, memory
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	HistoryKey string `yaml:"history_key" json:"history_key" default:"puttHistory"`

	AutoSave    bool `yaml:"auto_save" json:"auto_save" default:"true"`
	AutoConnect bool `yaml:"auto_connect" json:"auto_connect" default:"false"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	cfg.DataDir = DefaultDataDir()
	return cfg
}

// DefaultDataDir is the per-user directory for persisted history.
func DefaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "puttlink")
	}
	return ".puttlink"
}

// Load returns defaults overlaid with the YAML file at path. An empty path
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.ScanTimeout <= 0 {
		errs = append(errs, errors.New("scan_timeout must be positive"))
	}
	if c.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("connect_timeout must be positive"))
	}
	if c.Countdown < 0 {
		errs = append(errs, errors.New("countdown must not be negative"))
	}
	if c.ResultBuffer <= 0 {
		errs = append(errs, errors.New("result_buffer must be positive"))
	}
	if _, err := decoder.CodecByName(c.Encoding); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Storage) {
	case kv.BackendFile, kv.BackendSQLite, kv.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage %q must be file, sqlite or memory", c.Storage))
	}
	return errors.Join(errs...)
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	// Default to panic level (essentially silent for normal operations)
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.PanicLevel
	}
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// LinkOptions maps the configuration onto link.Options.
func (c *Config) LinkOptions() (link.Options, error) {
	codec, err := decoder.CodecByName(c.Encoding)
	if err != nil {
		return link.Options{}, err
	}
	return link.Options{
		ServiceUUID:    c.ServiceUUID,
		ControlUUID:    c.ControlUUID,
		DataUUID:       c.DataUUID,
		ScanTimeout:    c.ScanTimeout,
		ConnectTimeout: c.ConnectTimeout,
		ResultBuffer:   c.ResultBuffer,
		Codec:          codec,
	}, nil
}

// SessionOptions maps the configuration onto session.Options.
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		Countdown: c.Countdown,
		AutoSave:  c.AutoSave,
	}
}

// OpenStorage opens the configured history backend.
func (c *Config) OpenStorage() (kv.Blob, error) {
	return kv.Open(c.Storage, c.DataDir)
}

// HistoryKeyOrDefault returns the storage key for history.
func (c *Config) HistoryKeyOrDefault() string {
	if c.HistoryKey == "" {
		return history.DefaultKey
	}
	return c.HistoryKey
}
