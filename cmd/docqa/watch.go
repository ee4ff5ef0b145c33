package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docqa/internal/batch"
)

var watchFlags struct {
	dir       string
	questions string
	model     string
	batchSize int
	debounce  time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Extract answers for every corpus file dropped into a directory",
	Long: `watch runs an extraction for each CSV or XLSX file created in --dir, one file
at a time, and writes the answers next to it as <name>.results.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner, err := newRunner()
		if err != nil {
			return err
		}
		questions, err := batch.LoadQuestions(watchFlags.questions)
		if err != nil {
			return err
		}

		opts := batch.Options{Model: watchFlags.model, BatchSize: watchFlags.batchSize}
		handle := func(ctx context.Context, path string) error {
			c, err := runner.LoadCorpus([]string{path})
			if err != nil {
				return err
			}
			table, err := runner.Run(ctx, c, questions, opts)
			if err != nil {
				return err
			}
			out := batch.OutputPath(path)
			if err := batch.WriteResults(out, table); err != nil {
				return err
			}
			logrus.Infof("watch: %s: wrote %d records to %s", path, len(table.Records), out)
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return batch.NewWatcher(watchFlags.dir, handle, watchFlags.debounce).Start(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchFlags.dir, "dir", ".", "directory to watch")
	watchCmd.Flags().StringVar(&watchFlags.questions, "questions", "", "question-set file (.json or .yaml)")
	watchCmd.Flags().StringVar(&watchFlags.model, "model", "", "model identifier (default from DOCQA_EXTRACTION_DEFAULT_MODEL)")
	watchCmd.Flags().IntVar(&watchFlags.batchSize, "batch-size", 0, "questions per model call (default from DOCQA_EXTRACTION_DEFAULT_BATCH_SIZE)")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", time.Second, "quiet period before a new file is processed")
	_ = watchCmd.MarkFlagRequired("questions")

	rootCmd.AddCommand(watchCmd)
}
