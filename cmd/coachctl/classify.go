package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hirevision-backend/internal/analyses"
	"hirevision-backend/internal/pipeline"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	classifyText string
	classifyFile string
)

//nolint:gochecknoglobals // Cobra boilerplate
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Ask whether a document is a resume",
	RunE:  runClassify,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVar(&classifyText, "text", "", "Document text")
	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "Path to a plain text file")
	classifyCmd.MarkFlagsMutuallyExclusive("text", "file")
}

func runClassify(cmd *cobra.Command, args []string) (err error) {
	text := classifyText
	if classifyFile != "" {
		var data []byte
		data, err = os.ReadFile(classifyFile)
		if err != nil {
			err = errors.Wrap(err, "failed to read document")
			return err
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		err = errors.New("provide --text or --file")
		return err
	}

	runner, _ := newRunner(cmd)
	analyzer := &analyses.Analyzer{Runner: runner, Log: runner.Log}

	var check *analyses.DocumentCheck
	check, err = analyzer.Classify(cmd.Context(), text)
	if err != nil {
		if f := pipeline.AsFailure(err); f != nil && f.Message != "" {
			err = errors.Wrap(err, f.Message)
			return err
		}
		err = errors.Wrap(err, "classification failed")
		return err
	}

	summary := fmt.Sprintf("is_resume=%t confidence=%.2f", check.IsResume, check.Confidence)
	if check.Reason != "" {
		summary += " reason=" + check.Reason
	}
	return emit(cmd.OutOrStdout(), check, summary, pipeline.OutcomeSuccess, "", "")
}
