// ABOUTME: CLI command that re-analyzes the timeline on a cron schedule
// ABOUTME: Runs full-timeline analysis repeatedly until interrupted
package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/core"
)

var (
	watchSchedule string
	watchRunNow   bool
)

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-analyze the timeline on a schedule",
		Long: `Run full-timeline analysis on a cron schedule until interrupted.

The schedule accepts standard five-field cron expressions and
descriptors such as @hourly, @daily and "@every 30m". A run that is
still going when the next one is due causes the next one to be skipped.

Examples:
  lifeline watch
  lifeline watch --schedule "@every 6h"
  lifeline watch --schedule "0 3 * * *" --run-now`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron schedule (default: LIFELINE_ANALYZE_SCHEDULE or @daily)")
	cmd.Flags().BoolVar(&watchRunNow, "run-now", false, "Run one analysis immediately before waiting for the schedule")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	engine, err := core.New(cfg, store)
	if err != nil {
		return fmt.Errorf("initializing engine: %w", err)
	}

	schedule := watchSchedule
	if schedule == "" {
		schedule = cfg.AnalyzeSchedule
	}

	ctx, stop := interruptContext(cmd)
	defer stop()

	run := func() { runScheduledAnalysis(ctx, engine) }

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(schedule, run); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	if watchRunNow {
		run()
	}

	c.Start()
	if !quiet {
		log.Printf("[Watch] Analyzing on schedule %q, press Ctrl+C to stop", schedule)
	}

	<-ctx.Done()
	stopped := c.Stop()
	<-stopped.Done()
	if !quiet {
		log.Println("[Watch] Stopped")
	}
	return nil
}

func runScheduledAnalysis(ctx context.Context, engine *core.Engine) {
	if ctx.Err() != nil {
		return
	}
	report, err := engine.AnalyzeFullTimeline(ctx, engine.Options().SimilarityThreshold, core.TimelineOptions{
		Progress: progressLogger("Analyzer"),
	})
	if report == nil {
		log.Printf("[Watch] Analysis failed: %v", err)
		return
	}
	log.Printf("[Watch] Analyzed %d of %d event(s), %d relationship(s) stored, %d error(s)",
		report.Processed, report.TotalEvents, report.TotalReferences, len(report.Errors))
	if err != nil {
		log.Printf("[Watch] Analysis stopped early: %v", err)
	}
}
