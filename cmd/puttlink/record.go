package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/srg/puttlink/internal/decoder"
	"github.com/srg/puttlink/internal/device"
	"github.com/srg/puttlink/internal/link"
	"github.com/srg/puttlink/internal/session"
)

// recordCmd represents the record command
var recordCmd = &cobra.Command{
	Use:   "record [device-id]",
	Short: "Record one putting stroke",
	Long: `Connects to the analyzer, starts a recording window and prints the
classification it reports. Press Enter or Ctrl+C to stop, or pass --window to
stop automatically. The countdown is a guide only: recording continues until
you stop it.

Without a device ID, the first analyzer found by a scan is used when
auto_connect is enabled in the config.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecord,
}

var (
	recordWindow    time.Duration
	recordCountdown time.Duration
	recordNoSave    bool
)

const stopTimeout = 5 * time.Second

func init() {
	recordCmd.Flags().DurationVarP(&recordWindow, "window", "w", 0, "Stop automatically after this long (0 waits for Enter or Ctrl+C)")
	recordCmd.Flags().DurationVar(&recordCountdown, "countdown", 0, "Countdown shown while recording (default from config, 5s)")
	recordCmd.Flags().BoolVar(&recordNoSave, "no-save", false, "Do not save the result to history")
}

func runRecord(cmd *cobra.Command, args []string) error {
	if recordWindow < 0 {
		return fmt.Errorf("invalid window %s: must not be negative", recordWindow)
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	if recordCountdown > 0 {
		env.cfg.Countdown = recordCountdown
	}
	if recordNoSave {
		env.cfg.AutoSave = false
	}

	var id string
	if len(args) == 1 {
		id = args[0]
	} else if !env.cfg.AutoConnect {
		return fmt.Errorf("device id required: pass one or set auto_connect: true in the config")
	}

	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	ctx, stop := interruptContext(out, "stopping recording")
	defer stop()

	store, closeStore, err := env.openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	l, err := env.newLink(ctx)
	if err != nil {
		return err
	}
	defer l.Dispose()

	if id == "" {
		if id, err = firstAnalyzer(ctx, l, out, env.cfg.ScanTimeout); err != nil {
			return err
		}
	}

	progress := NewProgressPrinter(out, "Connecting to "+id, "Connecting")
	progress.Start()
	err = l.Connect(ctx, id)
	progress.Stop()
	if err != nil {
		return err
	}
	defer disconnect(l, env.logger)

	lost := make(chan struct{})
	var lostOnce sync.Once
	l.OnReset(func() {
		if l.State() == link.Disconnected {
			lostOnce.Do(func() { close(lost) })
		}
	})

	opts := env.cfg.SessionOptions()
	if isTerminal(out) {
		opts.OnTick = func(remaining time.Duration) {
			fmt.Fprintf(out, "\rRecording... %2ds left   ", int(remaining.Round(time.Second).Seconds()))
		}
	}
	opts.OnResult = func(res decoder.Result) {
		env.logger.WithField("label", res.Label).Debug("Result arrived during recording")
	}

	ctrl := session.New(l, store, opts, env.logger)
	defer ctrl.Close()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Recording on %s. Putt now, then press Enter to stop.\n", id)

	reason := waitForStop(ctx, cmd.InOrStdin(), recordWindow, lost)
	if isTerminal(out) {
		fmt.Fprint(out, clearLineSequence)
	}
	if reason == stopLost {
		return ErrConnectionLost
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	res, err := ctrl.Stop(stopCtx)
	printStopResult(out, res, env.cfg.AutoSave)
	return err
}

// firstAnalyzer scans and returns the strongest analyzer found.
func firstAnalyzer(ctx context.Context, l *link.Link, out io.Writer, window time.Duration) (string, error) {
	progress := NewCountdownProgressPrinter(out, "Looking for an analyzer", "Scanning", window)
	progress.Start()
	devices, err := l.Scan(ctx, nil)
	progress.Stop()
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", ErrNoAnalyzer
	}

	sort.SliceStable(devices, func(i, j int) bool {
		return rssiOf(devices[i]) > rssiOf(devices[j])
	})
	fmt.Fprintf(out, "Using %s (%s)\n", devices[0].DisplayName(), devices[0].ID)
	return devices[0].ID, nil
}

func rssiOf(d device.PeripheralDevice) int {
	if d.RSSI == nil {
		return -1 << 15
	}
	return *d.RSSI
}

type stopReason int

const (
	stopEnter stopReason = iota
	stopInterrupt
	stopWindow
	stopLost
)

// waitForStop blocks until the user stops the recording, the window elapses
// or the link drops. EOF on in is ignored so non-interactive runs rely on
// --window or Ctrl+C.
func waitForStop(ctx context.Context, in io.Reader, window time.Duration, lost <-chan struct{}) stopReason {
	enter := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(in).ReadString('\n'); err == nil {
			close(enter)
		}
	}()

	var timeout <-chan time.Time
	if window > 0 {
		timer := time.NewTimer(window)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-enter:
		return stopEnter
	case <-ctx.Done():
		return stopInterrupt
	case <-timeout:
		return stopWindow
	case <-lost:
		return stopLost
	}
}

func printStopResult(out io.Writer, res session.StopResult, autoSave bool) {
	if res.Result == nil {
		fmt.Fprintln(out, "No classification received.")
		return
	}

	r := res.Result
	fmt.Fprintf(out, "Result: %s (%.0f%% confidence)\n", colorLabel(r.Label), r.Confidence*100)

	if len(r.Features) > 0 {
		names := make([]string, 0, len(r.Features))
		for name := range r.Features {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "FEATURE\tVALUE\tSCORE\tDESCRIPTION")
		for _, name := range names {
			f := r.Features[name]
			fmt.Fprintf(w, "%s\t%.2f\t%.0f\t%s\n", name, f.Value, f.Score, f.Description)
		}
		_ = w.Flush()
	}

	switch {
	case res.Record != nil:
		fmt.Fprintf(out, "Saved to history as %s\n", res.Record.ID)
	case r.Label == "":
		fmt.Fprintln(out, "Not saved (no prediction).")
	case !autoSave:
		fmt.Fprintln(out, "Not saved (auto-save disabled).")
	}
}

