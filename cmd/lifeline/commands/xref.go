// ABOUTME: CLI command to show stored cross references for an event
// ABOUTME: Lists related events with relationship type, confidence, and reasoning
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewXrefCmd creates the xref command
func NewXrefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "xref <event-id>",
		Short: "Show relationships stored for an event",
		Long: `Show every stored cross reference touching an event.

Relationships are created by 'lifeline analyze' and typed as causal,
thematic, temporal, person, location or other.

Examples:
  lifeline xref evt_123
  lifeline xref --format json evt_123`,
		Args: cobra.ExactArgs(1),
		RunE: runXref,
	}

	return cmd
}

func runXref(cmd *cobra.Command, args []string) error {
	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	refs, err := engine.GetCrossReferences(commandContext(cmd), args[0])
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), refs)
	}
	if len(refs) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No cross references for %s\n", args[0])
		}
		return nil
	}

	w := newTable(cmd.OutOrStdout(), "TYPE", "CONFIDENCE", "RELATED EVENT", "REASONING")
	for _, ref := range refs {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\n", ref.RelationshipType, ref.Confidence, ref.RelatedEventID, truncate(ref.Reasoning, 60))
	}
	_ = w.Flush()
	return nil
}
