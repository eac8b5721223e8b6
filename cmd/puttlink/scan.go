package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/srg/puttlink/internal/device"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for putting analyzers",
	Long: `Scan for analyzers advertising the stroke analyzer service and list them.

The device ID printed here is what record and send expect.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanDuration time.Duration
	scanFormat   string
)

func init() {
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 0, "Scan duration (default from config, 10s)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
}

func runScan(cmd *cobra.Command, _ []string) error {
	if scanFormat != "table" && scanFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be one of [table json]", scanFormat)
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	if scanDuration > 0 {
		env.cfg.ScanTimeout = scanDuration
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	ctx, stop := interruptContext(out, "cancelling scan")
	defer stop()

	l, err := env.newLink(ctx)
	if err != nil {
		return err
	}
	defer l.Dispose()

	progress := NewCountdownProgressPrinter(out, "Scanning for analyzers", "Scanning", env.cfg.ScanTimeout)
	progress.Start()
	devices, err := l.Scan(ctx, nil)
	progress.Stop()
	if err != nil {
		env.logger.WithError(err).Error("scan failed")
		return err
	}

	if scanFormat == "json" {
		return writeDevicesJSON(out, devices)
	}
	return writeDevicesTable(out, devices)
}

func writeDevicesJSON(out io.Writer, devices []device.PeripheralDevice) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(devices)
}

func writeDevicesTable(out io.Writer, devices []device.PeripheralDevice) error {
	if len(devices) == 0 {
		fmt.Fprintln(out, "No analyzers found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tRSSI")
	for _, d := range devices {
		rssi := "-"
		if d.RSSI != nil {
			rssi = fmt.Sprintf("%d dBm", *d.RSSI)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.DisplayName(), rssi)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nFound %d analyzer(s).\n", len(devices))
	return nil
}
