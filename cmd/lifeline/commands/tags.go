// ABOUTME: CLI command to suggest tags
// ABOUTME: Ranks tags from similar events for a stored event or draft text
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/models"
)

var (
	tagsMax  int
	tagsText string
)

// NewTagsCmd creates the tags command
func NewTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags [event-id]",
		Short: "Suggest tags from similar events",
		Long: `Suggest tags for an event using the tags of semantically similar events.

Tags the event already has are never suggested. Use --text to get
suggestions for a draft before the event exists.

Examples:
  lifeline tags evt_123
  lifeline tags --max 3 evt_123
  lifeline tags --text "Weekend hike with the running club"`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTags,
	}

	cmd.Flags().IntVar(&tagsMax, "max", 5, "Maximum suggestions to return")
	cmd.Flags().StringVar(&tagsText, "text", "", "Suggest tags for draft text instead of a stored event")

	return cmd
}

func runTags(cmd *cobra.Command, args []string) error {
	if err := validatePositiveInt(tagsMax, "max"); err != nil {
		return err
	}
	if (len(args) == 1) == (tagsText != "") {
		return errors.New("provide either an event id or --text")
	}

	engine, store, err := openEngine()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	ctx := commandContext(cmd)

	var suggestions []models.TagSuggestion
	if tagsText != "" {
		suggestions, err = engine.SuggestTagsForText(ctx, tagsText, tagsMax)
	} else {
		suggestions, err = engine.SuggestTags(ctx, args[0], tagsMax)
	}
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(cmd.OutOrStdout(), suggestions)
	}
	if len(suggestions) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No tag suggestions\n")
		}
		return nil
	}

	w := newTable(cmd.OutOrStdout(), "TAG", "CONFIDENCE", "SUPPORTED BY")
	for _, s := range suggestions {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", s.TagName, s.Confidence, truncate(strings.Join(s.SupportingEventIDs, ", "), 50))
	}
	_ = w.Flush()
	return nil
}
