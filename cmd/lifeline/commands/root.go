// ABOUTME: Root command, global flags, and shared engine setup for the CLI
// ABOUTME: Every subcommand opens storage and the engine through openEngine
package commands

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/lifeline/internal/config"
	"github.com/harper/lifeline/internal/core"
	"github.com/harper/lifeline/internal/storage/sqlite"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configPath   string
	dbPath       string
)

const banner = `
 ██╗     ██╗███████╗███████╗██╗     ██╗███╗   ██╗███████╗
 ██║     ██║██╔════╝██╔════╝██║     ██║████╗  ██║██╔════╝
 ██║     ██║█████╗  █████╗  ██║     ██║██╔██╗ ██║█████╗
 ██║     ██║██╔══╝  ██╔══╝  ██║     ██║██║╚██╗██║██╔══╝
 ███████╗██║██║     ███████╗███████╗██║██║ ╚████║███████╗
 ╚══════╝╚═╝╚═╝     ╚══════╝╚══════╝╚═╝╚═╝  ╚═══╝╚══════╝`

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lifeline",
		Short: "Semantic cross-references and patterns for a life timeline",
		Long: banner + `

Lifeline embeds timeline events, finds semantically similar events,
classifies how pairs of events relate, and surfaces recurring
categories, dense periods, and shifts at era boundaries.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return errors.New("--verbose and --quiet cannot be used together")
			}
			switch outputFormat {
			case "auto", "table", "json":
			default:
				return fmt.Errorf("--format must be auto, table or json, got %q", outputFormat)
			}
			if quiet {
				log.SetOutput(io.Discard)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show progress and diagnostic logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default: $LIFELINE_CONFIG)")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: $LIFELINE_DB_PATH or XDG data dir)")

	cmd.AddCommand(
		NewImportCmd(),
		NewEventsCmd(),
		NewDeleteCmd(),
		NewEmbedCmd(),
		NewSimilarCmd(),
		NewXrefCmd(),
		NewAnalyzeCmd(),
		NewPatternsCmd(),
		NewTagsCmd(),
		NewWatchCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads .env, the config file, and the environment, then applies flag overrides
func loadConfig() (*config.Config, error) {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file loaded: %v", err)
	}

	path := configPath
	if path == "" {
		path = os.Getenv("LIFELINE_CONFIG")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openStorage opens the configured database
func openStorage() (*config.Config, *sqlite.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := sqlite.NewStorageWithPath(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing storage: %w", err)
	}
	return cfg, store, nil
}

// openEngine opens storage and builds the engine from configuration.
// The caller must close the returned storage.
func openEngine() (*core.Engine, *sqlite.Storage, error) {
	cfg, store, err := openStorage()
	if err != nil {
		return nil, nil, err
	}
	engine, err := core.New(cfg, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("initializing engine: %w", err)
	}
	if verbose {
		log.Printf("Engine ready: embeddings=%s/%s db=%s",
			engine.Embedder().Provider().Name(), engine.Embedder().Provider().Model(), cfg.DBPath)
	}
	return engine, store, nil
}
