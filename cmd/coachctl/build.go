package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hirevision-backend/internal/resumebuilds"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	buildInput string
	buildOut   string
)

//nolint:gochecknoglobals // Cobra boilerplate
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate a LaTeX resume from structured candidate data",
	Long: `Reads the builder JSON (contact_info, education, experience, projects, ...)
and asks the model for a complete LaTeX document.

Examples:
  coachctl build --input candidate.json --out resume.tex
  coachctl build --input candidate.json --json`,
	RunE: runBuild,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildInput, "input", "", "Path to the builder JSON file")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "Write the LaTeX document to this path")
	_ = buildCmd.MarkFlagRequired("input")
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	var data []byte
	data, err = os.ReadFile(buildInput)
	if err != nil {
		err = errors.Wrap(err, "failed to read builder input")
		return err
	}
	var in resumebuilds.Input
	if err = json.Unmarshal(data, &in); err != nil {
		err = errors.Wrap(err, "failed to parse builder input")
		return err
	}

	runner, cfg := newRunner(cmd)
	builder := &resumebuilds.Builder{Runner: runner, Policy: policyFrom(cfg), Log: runner.Log}

	res := builder.Build(cmd.Context(), in)
	if useDemo(res.Outcome, cfg) {
		res = resumebuilds.DemoResult()
	}

	if buildOut != "" && !res.Outcome.Failed() {
		if err = os.WriteFile(buildOut, []byte(res.LatexContent), 0o644); err != nil {
			err = errors.Wrap(err, "failed to write LaTeX output")
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d words)\n", buildOut, res.WordCount)
	}

	text := res.Summary()
	if buildOut == "" && !res.Outcome.Failed() {
		text = res.LatexContent
	}
	return emit(cmd.OutOrStdout(), res, text, res.Outcome, res.ErrorCode, res.Message)
}
