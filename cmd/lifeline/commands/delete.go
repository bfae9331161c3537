// ABOUTME: CLI command to delete an event from the timeline
// ABOUTME: Removes the event with its embedding and every cross reference touching it
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event with its embedding and cross references",
		Long: `Delete an event from the timeline.

The event's embedding and every relationship that names it are removed
too, so later searches and analyses never refer to it.

Examples:
  lifeline delete evt_123
  lifeline delete --format json evt_123`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	ctx := commandContext(cmd)

	eventID := args[0]
	if _, err := store.Events().Get(ctx, eventID); err != nil {
		return err
	}
	if err := store.Events().Delete(ctx, eventID); err != nil {
		return err
	}
	if err := engine.OnEventDeleted(ctx, eventID); err != nil {
		return fmt.Errorf("removing derived data for %s: %w", eventID, err)
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": eventID})
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", eventID)
	}
	return nil
}
