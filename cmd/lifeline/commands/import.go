// ABOUTME: CLI command to import a timeline dataset
// ABOUTME: Loads events and eras from YAML or JSON and optionally embeds them
package commands

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/core"
	"github.com/harper/lifeline/internal/models"
	"github.com/harper/lifeline/internal/storage/sqlite"
)

var (
	importEmbed bool
)

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import events and eras from a dataset file",
		Long: `Import events and eras from a YAML or JSON dataset.

The file holds an "events" list and an optional "eras" list. Dates are
YYYY-MM-DD or RFC 3339. Existing events with the same id are replaced.
Without --embed, a replaced event whose text changed loses its stored
embedding until the next 'lifeline embed'.

Examples:
  lifeline import timeline.yaml
  lifeline import --embed timeline.json`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolVar(&importEmbed, "embed", false, "Embed every event after import")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := sqlite.LoadDataset(args[0])
	if err != nil {
		return err
	}
	events, eras, err := data.ToModels()
	if err != nil {
		return fmt.Errorf("invalid dataset: %w", err)
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := commandContext(cmd)

	if err := store.ImportEras(ctx, eras); err != nil {
		return fmt.Errorf("importing eras: %w", err)
	}
	stale := 0
	for i := range events {
		dropped, err := saveEvent(ctx, store, engine, &events[i], importEmbed)
		if err != nil {
			return fmt.Errorf("importing event %s: %w", events[i].ID, err)
		}
		if dropped {
			stale++
		}
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"events":                   len(events),
			"eras":                     len(eras),
			"embedded":                 importEmbed,
			"stale_embeddings_removed": stale,
		})
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d event(s) and %d era(s)\n", len(events), len(eras))
		if stale > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d embedding(s) for events whose text changed\n", stale)
		}
		if !importEmbed {
			fmt.Fprintf(cmd.OutOrStdout(), "Run 'lifeline embed' to generate embeddings\n")
		}
	}
	return nil
}

// saveEvent stores event and keeps its embedding in step with its text.
// It reports whether a stale embedding was dropped instead of regenerated.
func saveEvent(ctx context.Context, store *sqlite.Storage, engine *core.Engine, event *models.Event, embed bool) (bool, error) {
	previous, err := store.Events().Get(ctx, event.ID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return false, err
	}
	if err := store.Events().Save(ctx, event); err != nil {
		return false, err
	}

	if embed {
		if err := engine.OnEventChanged(ctx, event); err != nil {
			return false, fmt.Errorf("embedding: %w", err)
		}
		return false, nil
	}
	if previous == nil || previous.TextFields() == event.TextFields() {
		return false, nil
	}
	if _, err := engine.Embedder().Get(ctx, event.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	log.Printf("[Import] %s text changed, removing stale embedding", event.ID)
	if err := engine.Embedder().Remove(ctx, event.ID); err != nil {
		return false, err
	}
	return true, nil
}
