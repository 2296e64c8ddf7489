package main

import (
	"log"
	"net/http"
	"os"

	"arcfeed/internal/config"
	"arcfeed/internal/wiki"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arcfeed",
	Short: "Encyclopedia home feed aggregator",
	Long: `arcfeed assembles the encyclopedia home screen: today's featured content
blended with a random past day, plus a random article. Upstream outages
degrade to built-in fallback content instead of failing.

Configuration comes from environment variables and an optional YAML file
named by ARCFEED_CONFIG.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(w *os.File) *log.Logger {
	return log.New(w, "[arcfeed] ", log.LstdFlags|log.Lshortfile)
}

func newWikiClient(cfg config.Config, logger *log.Logger) *wiki.Client {
	return wiki.NewClient(wiki.Options{
		BaseURL:   cfg.APIBaseURL,
		RelayURL:  cfg.RelayURL,
		UserAgent: cfg.UserAgent,
		Mode:      cfg.Environment,
	}, &http.Client{Timeout: cfg.Timeout}, logger)
}
