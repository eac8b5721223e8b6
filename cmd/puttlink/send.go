package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <device-id> <command>",
	Short: "Send a raw control command",
	Long: `Connects to the analyzer and writes one command to its control characteristic.

Examples:
  puttlink send AA:BB:CC:DD:EE:FF START
  puttlink send AA:BB:CC:DD:EE:FF STOP`,
	Args: cobra.ExactArgs(2),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	id := args[0]
	command := strings.TrimSpace(args[1])
	if command == "" {
		return fmt.Errorf("command must not be empty")
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	out := cmd.OutOrStdout()
	ctx, stop := interruptContext(out, "cancelling")
	defer stop()

	l, err := env.newLink(ctx)
	if err != nil {
		return err
	}
	defer l.Dispose()

	progress := NewProgressPrinter(out, "Connecting to "+id, "Connecting")
	progress.Start()
	err = l.Connect(ctx, id)
	progress.Stop()
	if err != nil {
		return err
	}
	defer disconnect(l, env.logger)

	if err := l.Send(ctx, command); err != nil {
		return err
	}
	fmt.Fprintf(out, "Sent %s to %s\n", command, id)
	return nil
}
