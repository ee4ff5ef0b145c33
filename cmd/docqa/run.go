package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docqa/internal/batch"
)

var runFlags struct {
	documents []string
	questions string
	model     string
	batchSize int
	out       string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract answers for every document matched by --documents",
	Example: `  docqa run --documents 'data/**/*.csv' --questions questions.json --out results.xlsx
  docqa run --documents a.csv --documents b.xlsx --questions q.yaml --batch-size 5 --out out.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := batch.ExpandGlobs(runFlags.documents)
		if err != nil {
			return err
		}
		if _, err := batch.FormatFromPath(runFlags.out); err != nil {
			return err
		}

		runner, err := newRunner()
		if err != nil {
			return err
		}
		questions, err := batch.LoadQuestions(runFlags.questions)
		if err != nil {
			return err
		}
		c, err := runner.LoadCorpus(paths)
		if err != nil {
			return err
		}

		table, err := runner.Run(cmd.Context(), c, questions, batch.Options{
			Model:     runFlags.model,
			BatchSize: runFlags.batchSize,
		})
		if err != nil {
			return err
		}
		if err := batch.WriteResults(runFlags.out, table); err != nil {
			return err
		}

		logrus.Infof("wrote %d records to %s (%d skipped, %d parse failures)",
			len(table.Records), runFlags.out, table.Stats.Skipped, table.Stats.ParseFailures)
		return nil
	},
}

func init() {
	runCmd.Flags().StringArrayVar(&runFlags.documents, "documents", nil, "corpus files or glob patterns (** supported); repeatable")
	runCmd.Flags().StringVar(&runFlags.questions, "questions", "", "question-set file (.json or .yaml)")
	runCmd.Flags().StringVar(&runFlags.model, "model", "", "model identifier (default from DOCQA_EXTRACTION_DEFAULT_MODEL)")
	runCmd.Flags().IntVar(&runFlags.batchSize, "batch-size", 0, "questions per model call (default from DOCQA_EXTRACTION_DEFAULT_BATCH_SIZE)")
	runCmd.Flags().StringVar(&runFlags.out, "out", "results.json", "output file (.json, .csv or .xlsx)")
	_ = runCmd.MarkFlagRequired("documents")
	_ = runCmd.MarkFlagRequired("questions")

	rootCmd.AddCommand(runCmd)
}
