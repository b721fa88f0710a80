package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blogagent/internal/config"
	"blogagent/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blogagent",
		Short: "Generate SEO blog posts from keywords and publish them to WordPress",
		Long: `blogagent - keyword to published post

For a primary keyword it asks a language model for an outline, writes the
body, repairs the HTML (anchored headings, table of contents), adds a few
internal links, then publishes a draft-first post with a featured image
and Rank Math SEO fields.

Examples:
  # One post for a given keyword
  blogagent run --keyword "EOR Spain"

  # One post for a random keyword from the keyword file
  blogagent run

  # Dry run: write the article to disk, publish nothing
  blogagent generate --keyword "EOR Spain" --format markdown --out out/eor.md

  # Every keyword in a file
  blogagent batch --file data/keywords.xlsx

  # Recurring runs on scheduler.cron
  blogagent schedule`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .blogagent.yaml)")

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewScheduleCmd())
	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewBatchCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg = loaded

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
