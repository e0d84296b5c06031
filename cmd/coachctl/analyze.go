package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hirevision-backend/internal/analyses"
	"hirevision-backend/internal/extract"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	analyzeResume   string
	analyzeJobFile  string
	analyzeJobText  string
	analyzeClassify bool
)

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a resume against a job description",
	Long: `Extracts text from a PDF or DOCX resume and scores it against a job description.

Examples:
  coachctl analyze --resume cv.pdf --job posting.txt
  coachctl analyze --resume cv.docx --job-text "Senior Go engineer, Kubernetes" --json`,
	RunE: runAnalyze,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeResume, "resume", "", "Path to the resume file (.pdf, .docx)")
	analyzeCmd.Flags().StringVar(&analyzeJobFile, "job", "", "Path to a file holding the job description")
	analyzeCmd.Flags().StringVar(&analyzeJobText, "job-text", "", "Job description text")
	analyzeCmd.Flags().BoolVar(&analyzeClassify, "classify", true, "Check that the document is a resume first")
	_ = analyzeCmd.MarkFlagRequired("resume")
	analyzeCmd.MarkFlagsMutuallyExclusive("job", "job-text")
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	jobDescription := analyzeJobText
	if strings.TrimSpace(analyzeJobFile) != "" {
		var data []byte
		data, err = os.ReadFile(analyzeJobFile)
		if err != nil {
			err = errors.Wrap(err, "failed to read job description")
			return err
		}
		jobDescription = string(data)
	}

	var data []byte
	data, err = os.ReadFile(analyzeResume)
	if err != nil {
		err = errors.Wrap(err, "failed to read resume")
		return err
	}

	runner, cfg := newRunner(cmd)
	limits := analyses.DefaultLimits()
	if cfg.MaxUploadBytes > 0 {
		limits.MaxFileBytes = cfg.MaxUploadBytes
	}
	analyzer := &analyses.Analyzer{
		Runner:            runner,
		Extractor:         extract.Extractor{},
		Policy:            policyFrom(cfg),
		Limits:            limits,
		ClassifyDocuments: analyzeClassify,
		Log:               runner.Log,
	}

	res := analyzer.Analyze(cmd.Context(), analyses.Input{
		File:           &analyses.Upload{FileName: filepath.Base(analyzeResume), Size: int64(len(data)), Data: data},
		JobDescription: jobDescription,
	})
	if useDemo(res.Outcome, cfg) {
		res = analyses.DemoResult()
	}
	return emit(cmd.OutOrStdout(), res, analyses.FormatMarkdown(res), res.Outcome, res.ErrorCode, res.Message)
}
