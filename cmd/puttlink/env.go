package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/puttlink/internal/device"
	goble "github.com/srg/puttlink/internal/device/go-ble"
	"github.com/srg/puttlink/internal/history"
	"github.com/srg/puttlink/internal/link"
	"github.com/srg/puttlink/pkg/config"
)

// adapterFactory creates the BLE adapter and its permission gate.
var adapterFactory = func(logger *logrus.Logger) (device.Adapter, device.PermissionGate) {
	a := goble.NewAdapter(logger)
	return a, a
}

// appEnv is the per-invocation configuration and logger.
type appEnv struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// loadEnv reads --config, applies global flag overrides and configures logging.
func loadEnv(cmd *cobra.Command) (*appEnv, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("storage"); v != "" {
		cfg.Storage = v
	}
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := configureLogger(cmd, "verbose", cfg)
	if err != nil {
		return nil, err
	}
	return &appEnv{cfg: cfg, logger: logger}, nil
}

// openHistory opens the configured store. The returned func closes the backend.
func (e *appEnv) openHistory(ctx context.Context) (*history.Store, func(), error) {
	blob, err := e.cfg.OpenStorage()
	if err != nil {
		return nil, nil, fmt.Errorf("open history storage: %w", err)
	}
	store, err := history.Open(ctx, blob, e.cfg.HistoryKeyOrDefault(), e.logger)
	if err != nil {
		_ = blob.Close()
		return nil, nil, err
	}
	closeFn := func() {
		if err := blob.Close(); err != nil {
			e.logger.WithError(err).Warn("Failed to close history storage")
		}
	}
	return store, closeFn, nil
}

// newLink creates and initialises a link. The caller must Dispose it.
func (e *appEnv) newLink(ctx context.Context) (*link.Link, error) {
	opts, err := e.cfg.LinkOptions()
	if err != nil {
		return nil, err
	}
	adapter, gate := adapterFactory(e.logger)
	l := link.New(adapter, gate, opts, e.logger)
	if err := l.Init(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// interruptContext returns a context cancelled on Ctrl+C or SIGTERM.
func interruptContext(out io.Writer, what string) (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintf(out, "\nCtrl+C pressed, %s...\n", what)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// disconnect tears the link down, reporting an ignored teardown failure.
func disconnect(l *link.Link, logger *logrus.Logger) {
	if ign := l.Disconnect(); ign != nil {
		logger.WithField("outcome", ign.String()).Debug("Disconnect completed with ignored teardown error")
	}
}

