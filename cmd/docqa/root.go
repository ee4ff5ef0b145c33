package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docqa/internal/batch"
	"docqa/internal/config"
	"docqa/internal/events"
	"docqa/internal/llm"
	_ "docqa/internal/llm/providers"
	"docqa/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Batch question answering over tabular document corpora",
	Long: `docqa asks a model a configured set of questions about every document in a
CSV or XLSX corpus and writes one record of answers per document.

Settings are read from DOCQA_* environment variables, the same ones the
HTTP server uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logging.Init(&cfg.Log)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "docqa: %s\n", err)
		os.Exit(1)
	}
}

// newRunner builds a batch runner from the loaded configuration.
func newRunner() (*batch.Runner, error) {
	invoker, err := llm.NewFromConfig(&cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize model provider: %w", err)
	}
	return batch.NewRunner(invoker, events.NewLogObserver(logrus.StandardLogger()), cfg.Extraction), nil
}
