package main

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/srg/puttlink/internal/device"
	"github.com/srg/puttlink/internal/history"
	"github.com/srg/puttlink/internal/kv"
	"github.com/srg/puttlink/internal/testutils"
)

// Test device addresses for consistent mock device identification
const (
	TestDeviceAddress1 = "00:00:00:00:00:01"
	TestDeviceAddress2 = "00:00:00:00:00:02"
)

// CommandTestSuite extends MockPeripheralSuite with command testing utilities.
// All cmd/puttlink test suites should embed this instead of MockPeripheralSuite.
type CommandTestSuite struct {
	testutils.MockPeripheralSuite

	DataDir string

	originalAdapterFactory func(*logrus.Logger) (device.Adapter, device.PermissionGate)
	originalNoColor        bool
}

func (s *CommandTestSuite) SetupSuite() {
	s.MockPeripheralSuite.SetupSuite()
	s.originalAdapterFactory = adapterFactory
	s.originalNoColor = color.NoColor
	color.NoColor = true
}

func (s *CommandTestSuite) TearDownSuite() {
	adapterFactory = s.originalAdapterFactory
	color.NoColor = s.originalNoColor
}

func (s *CommandTestSuite) SetupTest() {
	if s.PeripheralBuilder == nil {
		s.WithPeripheral().WithAddress(TestDeviceAddress1)
	}
	s.MockPeripheralSuite.SetupTest()

	s.DataDir = s.T().TempDir()
	adapterFactory = func(*logrus.Logger) (device.Adapter, device.PermissionGate) {
		return s.Peripheral.Adapter, device.GrantedGate{}
	}
	resetCommandFlags(rootCmd)
}

// ExecuteCommand runs the root command with args plus the suite data dir and
// returns combined output.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append(args, "--data-dir", s.DataDir))
	err := rootCmd.Execute()
	return buf.String(), err
}

// OpenHistory opens the suite's file-backed history directly.
func (s *CommandTestSuite) OpenHistory() *history.Store {
	blob, err := kv.NewFileBlob(s.DataDir)
	s.Require().NoError(err)
	store, err := history.Open(context.Background(), blob, history.DefaultKey, s.Logger)
	s.Require().NoError(err)
	return store
}

// SeedHistory appends records oldest first.
func (s *CommandTestSuite) SeedHistory(entries ...history.Record) *history.Store {
	store := s.OpenHistory()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	for i, e := range entries {
		_, err := store.Append(context.Background(), e.Label, e.Confidence, base.Add(time.Duration(i)*time.Minute))
		s.Require().NoError(err)
	}
	return store
}

// resetCommandFlags restores every flag to its default so tests do not leak
// values into each other through the package-level command tree.
func resetCommandFlags(cmd *cobra.Command) {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(cmd.Flags())
	reset(cmd.PersistentFlags())
	for _, c := range cmd.Commands() {
		resetCommandFlags(c)
	}
}
