// ABOUTME: CLI command to detect relationships between events
// ABOUTME: Analyzes one event or the full timeline, with resume after interruption
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/core"
)

var (
	analyzeThreshold   float64
	analyzeWorkers     int
	analyzeResumeAfter string
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [event-id]",
		Short: "Detect and store relationships between events",
		Long: `Classify how events relate and store confident relationships.

With an event id only that event is analyzed against its semantic and
temporal neighbors. Without one the whole timeline is analyzed in date
order. An interrupted run prints the event to resume after.

Examples:
  lifeline analyze evt_123
  lifeline analyze --threshold 0.4
  lifeline analyze --resume-after evt_456`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Float64Var(&analyzeThreshold, "threshold", -1, "Minimum similarity 0-1 for semantic candidates (default: configured threshold)")
	cmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "Concurrent events for full-timeline runs (default: configured workers)")
	cmd.Flags().StringVar(&analyzeResumeAfter, "resume-after", "", "Skip events up to and including this id")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analyzeWorkers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", analyzeWorkers)
	}
	if len(args) == 1 && analyzeResumeAfter != "" {
		return errors.New("--resume-after only applies to full-timeline runs")
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	threshold := analyzeThreshold
	if threshold < 0 {
		threshold = engine.Options().SimilarityThreshold
	}
	if err := validateThreshold(threshold, "threshold"); err != nil {
		return err
	}

	ctx, stop := interruptContext(cmd)
	defer stop()

	if len(args) == 1 {
		result, err := engine.AnalyzeEvent(ctx, args[0], threshold)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %s: %d candidate(s), %d relationship(s) stored\n",
			result.EventID, result.Candidates, result.CreatedCount)
		return nil
	}

	report, err := engine.AnalyzeFullTimeline(ctx, threshold, core.TimelineOptions{
		Workers:     analyzeWorkers,
		ResumeAfter: analyzeResumeAfter,
		Progress:    progressLogger("Analyzer"),
	})
	if report == nil {
		return err
	}
	if err := printTimelineReport(cmd, report); err != nil {
		return err
	}
	if errors.Is(err, context.Canceled) && report.ResumeAfter != "" && !jsonOutput() {
		fmt.Fprintf(cmd.OutOrStdout(), "Resume with: lifeline analyze --resume-after %s\n", report.ResumeAfter)
	}
	return err
}

func printTimelineReport(cmd *cobra.Command, report *core.TimelineReport) error {
	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), report)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %d of %d event(s): %d relationship(s) stored in %v\n",
		report.Processed, report.TotalEvents, report.TotalReferences, report.Duration.Round(time.Millisecond))
	printItemErrors(cmd, report.Errors)
	if report.Incomplete {
		fmt.Fprintf(cmd.OutOrStdout(), "Interrupted before finishing\n")
	}
	return nil
}
