// ABOUTME: CLI command to find semantically similar events
// ABOUTME: Ranks stored events by embedding similarity to a source event
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	similarThreshold float64
	similarLimit     int
)

// NewSimilarCmd creates the similar command
func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <event-id>",
		Short: "Find events similar to an event",
		Long: `Find events whose embeddings are close to an event's embedding.

Results are ordered by cosine similarity, most similar first. Only
embeddings from the active provider and model are compared.

Examples:
  lifeline similar evt_123
  lifeline similar --threshold 0.5 --limit 5 evt_123
  lifeline similar --format json evt_123`,
		Args: cobra.ExactArgs(1),
		RunE: runSimilar,
	}

	cmd.Flags().Float64Var(&similarThreshold, "threshold", -1, "Minimum similarity 0-1 (default: configured threshold)")
	cmd.Flags().IntVar(&similarLimit, "limit", 10, "Maximum results to return")

	return cmd
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(similarLimit, "limit"); err != nil {
		return err
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	threshold := similarThreshold
	if threshold < 0 {
		threshold = engine.Options().SimilarityThreshold
	}
	if err := validateThreshold(threshold, "threshold"); err != nil {
		return err
	}

	results, err := engine.FindSimilar(commandContext(cmd), args[0], threshold, similarLimit)
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), results)
	}
	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No similar events found\n")
		}
		return nil
	}

	w := newTable(cmd.OutOrStdout(), "SIMILARITY", "DATE", "TITLE", "EVENT ID")
	for _, r := range results {
		fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\n", r.Similarity, formatDate(r.StartDate), truncate(r.Title, 40), r.EventID)
	}
	_ = w.Flush()
	return nil
}
