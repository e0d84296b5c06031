package learningpaths

import (
	"context"
	"strings"
	"testing"
	"time"

	"hirevision-backend/internal/llm"
	"hirevision-backend/internal/llm/llmtest"
	"hirevision-backend/internal/pipeline"
	"hirevision-backend/internal/shared/telemetry"
)

var scenarioInput = Input{
	CurrentSkills: "5 years Python, Django, REST APIs",
	DreamRole:     "Senior Backend Engineer at a cloud infrastructure company",
}

const validPlan = `{
  "role_analysis": "Senior backend engineers at cloud infrastructure companies own distributed services end to end.",
  "skills_gap": ["Go", "Kubernetes"],
  "learning_path": [
    {
      "phase": "Phase 1: Foundation",
      "duration": "2 months",
      "description": "Learn Go and concurrency",
      "skills_to_learn": ["Go", "goroutines"],
      "resources": [
        {"type": "book", "name": "The Go Programming Language", "url": "https://www.gopl.io", "description": "Classic", "difficulty": "intermediate", "verified": "true"},
        {"type": "course", "name": "Made Up Course", "url": "https://example.invalid", "description": "?", "difficulty": "beginner", "verified": false}
      ],
      "projects": [{"name": "CLI tool", "description": "Build a CLI", "skills_practiced": ["Go"], "github_template": ""}]
    }
  ],
  "timeline": "6 months",
  "success_metrics": ["Ship a service"],
  "career_advice": "Contribute to open source.",
  "networking_tips": ["Attend KubeCon"]
}`

func testPlanner(p llm.Provider) *Planner {
	return &Planner{
		Runner: &pipeline.Runner{
			Providers: pipeline.StaticProvider(p),
			Retry:     llm.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond},
			Log:       telemetry.Nop(),
		},
		Log: telemetry.Nop(),
	}
}

func TestPlanNotConfiguredMakesNoCalls(t *testing.T) {
	provider := llmtest.Text(validPlan)
	p := testPlanner(provider)
	// An empty environment resolves to a configuration error before any call.
	p.Runner.Providers = pipeline.ProviderFunc(func(ctx context.Context) (llm.Provider, llm.ProviderConfig, error) {
		cfg, err := llm.ResolveProvider(func(string) string { return "" })
		if err != nil {
			return nil, llm.ProviderConfig{}, err
		}
		return provider, cfg, nil
	})

	res := p.Plan(context.Background(), scenarioInput)
	if res.Outcome != pipeline.OutcomeNotConfigured {
		t.Fatalf("expected not configured, got %s", res.Outcome)
	}
	if res.Message != llm.ConfigInstructions {
		t.Fatalf("expected configuration instructions, got %q", res.Message)
	}
	if res.ErrorCode != pipeline.CodeNotConfigured {
		t.Fatalf("unexpected error code %q", res.ErrorCode)
	}
	if provider.Calls() != 0 {
		t.Fatalf("expected no network calls, got %d", provider.Calls())
	}
}

func TestPlanSuccess(t *testing.T) {
	res := testPlanner(llmtest.Text("Sure!\n" + validPlan)).Plan(context.Background(), scenarioInput)
	if res.Outcome != pipeline.OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", res.Outcome, res.Message)
	}
	if len(res.LearningPath) != 1 || len(res.LearningPath[0].Resources) != 2 {
		t.Fatalf("unexpected plan %+v", res)
	}
	if !res.LearningPath[0].Resources[0].Verified || res.LearningPath[0].Resources[1].Verified {
		t.Fatalf("verified flags decoded incorrectly: %+v", res.LearningPath[0].Resources)
	}
	if res.Summary() != "success: 1 phases, 2 skills to close" {
		t.Fatalf("unexpected summary %q", res.Summary())
	}
}

func TestPlanAcceptsIrregularValidatedShapes(t *testing.T) {
	const analysis = "Platform engineers own the deployment pipeline and the clusters it targets."
	tests := []struct {
		name  string
		reply string
		check func(t *testing.T, res Result)
	}{
		{
			name: "string resources and projects",
			reply: `{"role_analysis": "` + analysis + `", "skills_gap": ["Go"],
				"learning_path": [{"phase": "Basics", "description": "Learn Go", "skills_to_learn": ["Go"],
				"resources": ["Tour of Go", "Go by Example"], "projects": ["Build a CLI"]}]}`,
			check: func(t *testing.T, res Result) {
				phase := res.LearningPath[0]
				if len(phase.Resources) != 2 || phase.Resources[0].Name != "Tour of Go" || phase.Resources[0].Verified {
					t.Fatalf("unexpected resources %+v", phase.Resources)
				}
				if len(phase.Projects) != 1 || phase.Projects[0].Name != "Build a CLI" || phase.Projects[0].SkillsPracticed == nil {
					t.Fatalf("unexpected projects %+v", phase.Projects)
				}
			},
		},
		{
			name: "single objects instead of lists",
			reply: `{"role_analysis": "` + analysis + `", "skills_gap": ["Go"], "success_metrics": {"first": "ship"},
				"learning_path": [{"phase": "Basics", "description": "Learn Go", "skills_to_learn": "Go",
				"resources": {"name": "Tour of Go", "verified": true, "url": "https://go.dev/tour"},
				"projects": {"name": "CLI", "skills_practiced": {"lang": "Go"}}}]}`,
			check: func(t *testing.T, res Result) {
				phase := res.LearningPath[0]
				if len(phase.Resources) != 1 || !phase.Resources[0].Linkable() {
					t.Fatalf("unexpected resources %+v", phase.Resources)
				}
				if len(phase.Projects) != 1 || len(phase.Projects[0].SkillsPracticed) != 1 {
					t.Fatalf("unexpected projects %+v", phase.Projects)
				}
				if len(phase.SkillsToLearn) != 1 || len(res.SuccessMetrics) != 1 {
					t.Fatalf("bare values should become one-item lists: %+v %+v", phase.SkillsToLearn, res.SuccessMetrics)
				}
			},
		},
		{
			name: "numeric phase and mixed lists",
			reply: `{"role_analysis": "` + analysis + `", "skills_gap": ["Go", {"area": "k8s"}],
				"learning_path": [{"phase": 1, "duration": 8, "description": "Learn Go", "skills_to_learn": ["Go", 2],
				"resources": [42, null, "Effective Go", {"name": "Go Blog"}], "projects": null}],
				"timeline": 6, "networking_tips": 3}`,
			check: func(t *testing.T, res Result) {
				phase := res.LearningPath[0]
				if phase.Phase != "1" || phase.Duration != "8" {
					t.Fatalf("numeric scalars not kept: %+v", phase)
				}
				if len(phase.Resources) != 2 || phase.Projects == nil || len(phase.Projects) != 0 {
					t.Fatalf("unexpected phase lists %+v %+v", phase.Resources, phase.Projects)
				}
				if len(res.SkillsGap) != 2 || res.Timeline != "6" || len(res.NetworkingTips) != 1 {
					t.Fatalf("unexpected top-level fields %+v", res)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, ok := llm.ExtractJSON(tt.reply)
			if !ok || !Validate(fields) {
				t.Fatalf("reply should pass validation")
			}
			res := testPlanner(llmtest.Text(tt.reply)).Plan(context.Background(), scenarioInput)
			if res.Outcome != pipeline.OutcomeSuccess {
				t.Fatalf("expected success, got %s (%s)", res.Outcome, res.Message)
			}
			tt.check(t, res)
		})
	}
}

func TestPlanInputErrors(t *testing.T) {
	tests := []struct {
		in   Input
		want string
	}{
		{in: Input{DreamRole: scenarioInput.DreamRole}, want: "both your current skills and dream role"},
		{in: Input{CurrentSkills: "Python", DreamRole: scenarioInput.DreamRole}, want: "current skills and experience"},
		{in: Input{CurrentSkills: scenarioInput.CurrentSkills, DreamRole: "  SWE  "}, want: "dream role."},
	}
	for _, tt := range tests {
		provider := llmtest.Text(validPlan)
		res := testPlanner(provider).Plan(context.Background(), tt.in)
		if res.Outcome != pipeline.OutcomeInputError || !strings.Contains(res.Message, tt.want) {
			t.Fatalf("input %+v: got %s %q", tt.in, res.Outcome, res.Message)
		}
		if !strings.HasPrefix(string(res.RoleAnalysis), "Error occurred: ") {
			t.Fatalf("unexpected role analysis %q", res.RoleAnalysis)
		}
		if provider.Calls() != 0 {
			t.Fatalf("expected no provider calls")
		}
	}
}

func TestPlanProseReplyDegrades(t *testing.T) {
	reply := "Learn Go, then Kubernetes, then distributed systems."
	res := testPlanner(llmtest.Text(reply)).Plan(context.Background(), scenarioInput)
	if res.Outcome != pipeline.OutcomeDegraded {
		t.Fatalf("expected degraded, got %s", res.Outcome)
	}
	if string(res.RoleAnalysis) != reply || string(res.CareerAdvice) != reply {
		t.Fatalf("expected raw reply preserved, got %+v", res)
	}
	if res.LearningPath == nil || len(res.LearningPath) != 0 {
		t.Fatalf("expected empty learning path, got %v", res.LearningPath)
	}
}

func TestPlanStrictPolicy(t *testing.T) {
	p := testPlanner(llmtest.Text("prose only"))
	p.Policy = pipeline.PolicyStrict
	res := p.Plan(context.Background(), scenarioInput)
	if res.Outcome != pipeline.OutcomeMalformedResponse || res.ErrorCode != pipeline.CodeSchemaMismatch {
		t.Fatalf("expected malformed response, got %s %s", res.Outcome, res.ErrorCode)
	}
}

func TestPlanIncompleteStructure(t *testing.T) {
	res := testPlanner(llmtest.Text(`{"role_analysis": "too short", "skills_gap": ["Go"], "learning_path": [{"phase": "1"}]}`)).
		Plan(context.Background(), scenarioInput)
	if res.Outcome != pipeline.OutcomeInvalidStructure {
		t.Fatalf("expected invalid structure, got %s", res.Outcome)
	}
}

func TestValidate(t *testing.T) {
	long := strings.Repeat("a", 50)
	phase := map[string]any{"phase": "1", "description": "d", "skills_to_learn": []any{"Go"}}
	valid := func() map[string]any {
		return map[string]any{
			"role_analysis": long,
			"skills_gap":    []any{"Go"},
			"learning_path": []any{phase},
		}
	}

	if !Validate(valid()) {
		t.Fatalf("expected valid mapping")
	}

	cases := map[string]func(m map[string]any){
		"missing role_analysis": func(m map[string]any) { delete(m, "role_analysis") },
		"missing skills_gap":    func(m map[string]any) { delete(m, "skills_gap") },
		"missing learning_path": func(m map[string]any) { delete(m, "learning_path") },
		"short role_analysis":   func(m map[string]any) { m["role_analysis"] = "  " + strings.Repeat("a", 49) + "   " },
		"non-string analysis":   func(m map[string]any) { m["role_analysis"] = 42.0 },
		"empty skills_gap":      func(m map[string]any) { m["skills_gap"] = []any{} },
		"empty learning_path":   func(m map[string]any) { m["learning_path"] = []any{} },
		"phase not object":      func(m map[string]any) { m["learning_path"] = []any{"phase 1"} },
		"phase missing keys":    func(m map[string]any) { m["learning_path"] = []any{map[string]any{"phase": "1"}} },
	}
	for name, mutate := range cases {
		m := valid()
		mutate(m)
		if Validate(m) {
			t.Fatalf("%s: expected invalid", name)
		}
	}
	if Validate(nil) {
		t.Fatalf("nil mapping must be invalid")
	}
}
