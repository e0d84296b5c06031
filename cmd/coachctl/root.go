package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/llm/providers"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/shared/config"
	"hirevision-backend/internal/shared/telemetry"
)

//nolint:gochecknoglobals // Cobra boilerplate
var (
	jsonOutput bool
	demoMode   bool
	verbose    bool
)

// providerSource is replaced in tests.
//
//nolint:gochecknoglobals // test hook
var providerSource pipeline.ProviderSource

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "coachctl",
	Short: "Run the career coaching pipelines from the command line",
	Long: `coachctl runs resume analysis, learning path planning and LaTeX resume
building without the API server. Provider settings come from the same
environment variables the server reads (OPENAI_API_KEY, LLM_USE_OPENROUTER, ...).`,
	SilenceUsage: true,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the typed result as JSON")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "Print demo data when no provider is configured")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log provider calls to stderr")
}

func newRunner(cmd *cobra.Command) (*pipeline.Runner, config.Config) {
	cfg := config.Load()
	log := telemetry.Nop()
	if verbose {
		log = telemetry.New(cmd.ErrOrStderr())
	}
	source := providerSource
	if source == nil {
		source = providers.Source{Resolver: llm.EnvResolver{}, Log: log}
	}
	return &pipeline.Runner{
		Providers: source,
		Retry:     llm.RetryPolicy{MaxRetries: cfg.LLMMaxRetries, BaseDelay: cfg.LLMRetryBaseDelay},
		Log:       log,
		JSONMode:  cfg.LLMJSONMode,
	}, cfg
}

func policyFrom(cfg config.Config) pipeline.MalformedPolicy {
	return pipeline.ParseMalformedPolicy(cfg.MalformedPolicy)
}

// useDemo reports whether a not-configured outcome should be replaced by
// demo data.
func useDemo(outcome pipeline.Outcome, cfg config.Config) bool {
	return outcome == pipeline.OutcomeNotConfigured && (demoMode || cfg.DemoMode)
}

// emit prints v as JSON or as text, then turns a failed outcome into an error
// so the process exits non-zero.
func emit(w io.Writer, v any, text string, outcome pipeline.Outcome, code, message string) (err error) {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err = enc.Encode(v); err != nil {
			err = errors.Wrap(err, "failed to write result")
			return err
		}
	} else {
		if _, err = fmt.Fprintln(w, text); err != nil {
			err = errors.Wrap(err, "failed to write result")
			return err
		}
	}
	if outcome.Failed() {
		err = errors.Errorf("%s (%s): %s", outcome, code, message)
	}
	return err
}
