package main

import (
	"encoding/json"
	"fmt"
	"os"

	"arcfeed/internal/aggregator"
	"arcfeed/internal/config"

	"github.com/spf13/cobra"
)

var fetchCompact bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Load the home feed once and print it as JSON",
	Long: `Run a single feed load and write the result to stdout. Logs go to
stderr. Needs neither MongoDB nor RabbitMQ.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchCompact, "compact", false, "print JSON without indentation")
}

func runFetch(cmd *cobra.Command, _ []string) error {
	logger := newLogger(os.Stderr)

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	svc := aggregator.NewService(newWikiClient(cfg, logger), cfg.MaxPastDays, logger)

	home, err := svc.LoadFeed(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if !fetchCompact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(home)
}
