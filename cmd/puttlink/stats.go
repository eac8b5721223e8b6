package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/srg/puttlink/internal/history"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise recorded strokes",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var statsFormat string

const topLabelCount = 3

func init() {
	statsCmd.Flags().StringVarP(&statsFormat, "format", "f", "table", "Output format (table, json)")
}

type labelShare struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type statsReport struct {
	Total          int                  `json:"total"`
	MeanConfidence float64              `json:"mean_confidence"`
	Labels         []labelShare         `json:"labels"`
	TopLabels      []history.LabelCount `json:"top_labels"`
	Message        string               `json:"message"`
}

func buildStatsReport(store *history.Store) statsReport {
	report := statsReport{
		Total:          store.Total(),
		MeanConfidence: store.MeanConfidence(),
		Labels:         []labelShare{},
		TopLabels:      store.TopLabels(topLabelCount),
		Message:        store.ProgressMessage(),
	}
	hist := store.LabelHistogram()
	for pair := hist.Oldest(); pair != nil; pair = pair.Next() {
		report.Labels = append(report.Labels, labelShare{
			Label:   pair.Key,
			Count:   pair.Value,
			Percent: store.PercentageForLabel(pair.Key),
		})
	}
	return report
}

func runStats(cmd *cobra.Command, _ []string) error {
	if statsFormat != "table" && statsFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be one of [table json]", statsFormat)
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

	report := buildStatsReport(store)
	out := cmd.OutOrStdout()
	if statsFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeStatsTable(out, report)
}

func writeStatsTable(out io.Writer, r statsReport) error {
	fmt.Fprintf(out, "Total strokes:   %d\n", r.Total)
	fmt.Fprintf(out, "Mean confidence: %.0f%%\n", r.MeanConfidence*100)

	if len(r.Labels) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "LABEL\tCOUNT\tSHARE")
		for _, l := range r.Labels {
			fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", colorLabel(l.Label), l.Count, l.Percent)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(r.TopLabels) > 0 {
		fmt.Fprint(out, "\nMost common:")
		for i, l := range r.TopLabels {
			sep := ","
			if i == 0 {
				sep = ""
			}
			fmt.Fprintf(out, "%s %s (%d)", sep, colorLabel(l.Label), l.Count)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "\n%s\n", r.Message)
	return nil
}
