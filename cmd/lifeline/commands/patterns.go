// ABOUTME: CLI command to detect timeline patterns
// ABOUTME: Prints recurring categories, temporal clusters, and era transitions
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewPatternsCmd creates the patterns command
func NewPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Detect recurring categories, clusters, and era transitions",
		Long: `Analyze the whole timeline for patterns.

Reports categories that recur with their trend, dense runs of events
in time, and shifts in the dominant category at era boundaries.
Thresholds come from configuration (LIFELINE_MIN_CATEGORY_SUPPORT,
LIFELINE_CLUSTER_WINDOW_DAYS, LIFELINE_CLUSTER_MIN_EVENTS,
LIFELINE_ERA_WINDOW_DAYS).

Examples:
  lifeline patterns
  lifeline patterns --format json`,
		Args: cobra.NoArgs,
		RunE: runPatterns,
	}

	return cmd
}

func runPatterns(cmd *cobra.Command, args []string) error {
	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	report, err := engine.DetectPatterns(commandContext(cmd))
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recurring categories (%d)\n", len(report.CategoryPatterns))
	if len(report.CategoryPatterns) > 0 {
		w := newTable(out, "CATEGORY", "COUNT", "TREND", "FIRST", "LAST")
		for _, p := range report.CategoryPatterns {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", p.Category, p.Occurrences, p.Trend, formatDate(p.FirstSeen), formatDate(p.LastSeen))
		}
		_ = w.Flush()
	}

	fmt.Fprintf(out, "\nTemporal clusters (%d)\n", len(report.TemporalClusters))
	if len(report.TemporalClusters) > 0 {
		w := newTable(out, "START", "END", "EVENTS", "THEME", "COHESION")
		for _, c := range report.TemporalClusters {
			theme := c.Theme
			if theme == "" {
				theme = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2f\n", formatDate(c.Start), formatDate(c.End), len(c.MemberEventIDs), theme, c.Cohesion)
		}
		_ = w.Flush()
	}

	fmt.Fprintf(out, "\nEra transitions (%d)\n", len(report.EraTransitions))
	if len(report.EraTransitions) > 0 {
		w := newTable(out, "DATE", "FROM ERA", "TO ERA", "CATEGORY SHIFT")
		for _, tr := range report.EraTransitions {
			from := tr.FromEra
			if from == "" {
				from = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s -> %s\n", formatDate(tr.BoundaryDate), from, tr.ToEra, tr.CategoryShift.From, tr.CategoryShift.To)
		}
		_ = w.Flush()
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(out, "\nSome analyses failed:\n  %s\n", strings.Join(report.Errors, "\n  "))
	}
	return nil
}
