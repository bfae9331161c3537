// ABOUTME: CLI command to list timeline events
// ABOUTME: Shows events in analysis order with their embedding status
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/models"
)

var (
	eventsCategory string
)

// NewEventsCmd creates the events command
func NewEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List timeline events",
		Long: `List timeline events ordered by start date.

The EMBEDDED column shows whether an event has a stored vector for
similarity search.

Examples:
  lifeline events
  lifeline events --category work
  lifeline events --format json`,
		Args: cobra.NoArgs,
		RunE: runEvents,
	}

	cmd.Flags().StringVar(&eventsCategory, "category", "", "Only show events in this category")

	return cmd
}

type eventRow struct {
	models.Event
	Embedded bool `json:"embedded"`
}

func runEvents(cmd *cobra.Command, args []string) error {
	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	ctx := commandContext(cmd)

	events, err := store.Events().List(ctx)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}

	rows := make([]eventRow, 0, len(events))
	for _, e := range events {
		if eventsCategory != "" && !strings.EqualFold(e.Category, eventsCategory) {
			continue
		}
		_, err := engine.Embedder().Get(ctx, e.ID)
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			return err
		}
		rows = append(rows, eventRow{Event: e, Embedded: err == nil})
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), rows)
	}
	if len(rows) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No events found\n")
		}
		return nil
	}

	w := newTable(cmd.OutOrStdout(), "DATE", "TITLE", "CATEGORY", "EMBEDDED", "EVENT ID")
	for _, row := range rows {
		embedded := "no"
		if row.Embedded {
			embedded = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			formatDate(row.StartDate),
			truncate(row.Title, 40),
			row.Category,
			embedded,
			row.ID)
	}
	_ = w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d event(s)\n", len(rows))
	}
	return nil
}
