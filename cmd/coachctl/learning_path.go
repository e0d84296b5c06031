package main

import (
	"github.com/spf13/cobra"

	"hirevision-backend/internal/learningpaths"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	pathSkills string
	pathRole   string
)

//nolint:gochecknoglobals // Cobra boilerplate
var learningPathCmd = &cobra.Command{
	Use:   "learning-path",
	Short: "Plan a learning path from current skills to a dream role",
	Long: `Plans a phased learning path. Resources the model could not verify are
listed without links and flagged for manual research.

Example:
  coachctl learning-path --skills "5 years Python, Django, REST APIs" \
    --role "Senior Backend Engineer at a cloud infrastructure company"`,
	RunE: runLearningPath,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(learningPathCmd)
	learningPathCmd.Flags().StringVar(&pathSkills, "skills", "", "Current skills and experience")
	learningPathCmd.Flags().StringVar(&pathRole, "role", "", "Dream role")
	_ = learningPathCmd.MarkFlagRequired("skills")
	_ = learningPathCmd.MarkFlagRequired("role")
}

func runLearningPath(cmd *cobra.Command, args []string) (err error) {
	runner, cfg := newRunner(cmd)
	planner := &learningpaths.Planner{Runner: runner, Policy: policyFrom(cfg), Log: runner.Log}

	res := planner.Plan(cmd.Context(), learningpaths.Input{CurrentSkills: pathSkills, DreamRole: pathRole})
	if useDemo(res.Outcome, cfg) {
		res = learningpaths.DemoResult()
	}
	return emit(cmd.OutOrStdout(), res, learningpaths.FormatMarkdown(res), res.Outcome, res.ErrorCode, res.Message)
}
