package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/srg/puttlink/internal/history"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded strokes, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded stroke",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var (
	historyLimit  int
	historyFormat string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of records to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "table", "Output format (table, json)")
	historyCmd.AddCommand(historyClearCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyFormat != "table" && historyFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be one of [table json]", historyFormat)
	}
	if historyLimit < 0 {
		return fmt.Errorf("invalid limit %d: must not be negative", historyLimit)
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	store, closeStore, err := env.openHistory(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	var records []history.Record
	if historyLimit == 0 {
		records = store.All()
	} else {
		records = store.Recent(historyLimit)
	}

	out := cmd.OutOrStdout()
	if historyFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return writeHistoryTable(out, records, store.Total())
}

func writeHistoryTable(out io.Writer, records []history.Record, total int) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No strokes recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tLABEL\tCONFIDENCE\tID")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\n",
			r.RecordedAt.Local().Format(time.DateTime), colorLabel(r.Label), r.Confidence*100, r.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if total > len(records) {
		fmt.Fprintf(out, "\nShowing %d of %d strokes.\n", len(records), total)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	store, closeStore, err := env.openHistory(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	n := store.Total()
	if err := store.ClearAll(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d stroke(s).\n", n)
	return nil
}
