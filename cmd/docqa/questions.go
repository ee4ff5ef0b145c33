package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"docqa/internal/batch"
	"docqa/internal/domain"
	"docqa/internal/questionstore"
)

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Work with question-set files",
}

var convertFlags struct {
	in  string
	out string
}

var convertCmd = &cobra.Command{
	Use:     "convert",
	Short:   "Convert a question-set file between JSON and YAML",
	Example: "  docqa questions convert --in questions.json --out questions.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := batch.FormatFromPath(convertFlags.out)
		if err != nil {
			return err
		}
		if format != domain.ExportFormatJSON && format != domain.ExportFormatYAML {
			return fmt.Errorf("%w: question sets are written as .json or .yaml", domain.ErrUnsupportedFormat)
		}
		store, err := batch.LoadQuestions(convertFlags.in)
		if err != nil {
			return err
		}

		f, err := os.Create(convertFlags.out)
		if err != nil {
			return err
		}
		if err := questionstore.Encode(f, store.Export(), format); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logrus.Infof("wrote %d categories to %s", store.Len(), convertFlags.out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFlags.in, "in", "", "input file (.json or .yaml)")
	convertCmd.Flags().StringVar(&convertFlags.out, "out", "", "output file (.json or .yaml)")
	_ = convertCmd.MarkFlagRequired("in")
	_ = convertCmd.MarkFlagRequired("out")

	questionsCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(questionsCmd)
}
