// ABOUTME: CLI command to generate or clear event embeddings
// ABOUTME: Embeds one event, every event with a worker pool, or clears the store
package commands

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/core"
)

var (
	embedWorkers int
	embedClear   bool
)

// NewEmbedCmd creates the embed command
func NewEmbedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embed [event-id]",
		Short: "Generate embeddings for events",
		Long: `Generate embeddings for one event or for the whole timeline.

Without an event id every event is re-embedded with the configured
provider. Events without text are skipped and lose any stale vector.
Use --clear after switching providers or models.

Examples:
  lifeline embed evt_123
  lifeline embed --workers 4
  lifeline embed --clear`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEmbed,
	}

	cmd.Flags().IntVar(&embedWorkers, "workers", 0, "Concurrent provider calls (default: configured workers)")
	cmd.Flags().BoolVar(&embedClear, "clear", false, "Delete every stored embedding instead of generating")

	return cmd
}

func runEmbed(cmd *cobra.Command, args []string) error {
	if embedWorkers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", embedWorkers)
	}
	if embedClear && len(args) > 0 {
		return errors.New("--clear does not take an event id")
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	ctx, stop := interruptContext(cmd)
	defer stop()

	if embedClear {
		removed, err := engine.ClearEmbeddings(ctx)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), map[string]int64{"removed": removed})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d embedding(s)\n", removed)
		return nil
	}

	if len(args) == 1 {
		result, err := engine.GenerateEmbedding(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOutput() {
			return printJSON(cmd.OutOrStdout(), result)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Embedded %s (%d dimensions)\n", args[0], result.Dimension)
		return nil
	}

	report, err := engine.RegenerateAll(ctx, core.BatchOptions{
		Workers:  embedWorkers,
		Progress: progressLogger("Embedder"),
	})
	if report == nil {
		return err
	}
	if jsonOutput() {
		if printErr := printJSON(cmd.OutOrStdout(), report); printErr != nil {
			return printErr
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Embedded %d of %d event(s), skipped %d without text\n",
		report.Embedded, report.Total, report.Skipped)
	printItemErrors(cmd, report.Errors)
	if report.Incomplete {
		fmt.Fprintf(cmd.OutOrStdout(), "Interrupted before finishing\n")
	}
	return err
}

// progressLogger logs batch progress when --verbose is set
func progressLogger(component string) core.ProgressFunc {
	if !verbose {
		return nil
	}
	return func(p core.Progress) {
		status := "ok"
		if p.Err != nil {
			status = p.Err.Error()
		}
		log.Printf("[%s] %d/%d %s: %s", component, p.Done, p.Total, p.EventID, status)
	}
}

func printItemErrors(cmd *cobra.Command, errs []core.ItemError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d failure(s):\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", e.EventID, truncate(e.Message, 100))
	}
}
