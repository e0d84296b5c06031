package learningpaths

import (
	"encoding/json"
	"fmt"
	"strings"

	"hirevision-backend/internal/pipeline"
)

// Resource is a course, book or tool suggested for a phase.
type Resource struct {
	Type        pipeline.Text `json:"type"`
	Name        pipeline.Text `json:"name"`
	URL         pipeline.Text `json:"url"`
	Description pipeline.Text `json:"description"`
	Difficulty  pipeline.Text `json:"difficulty"`
	Verified    pipeline.Flag `json:"verified"`
}

// Linkable reports whether the resource may be shown as a link.
func (r Resource) Linkable() bool {
	url := strings.TrimSpace(string(r.URL))
	return bool(r.Verified) && url != "" && url != "#"
}

// Project is a hands-on exercise for a phase.
type Project struct {
	Name            pipeline.Text       `json:"name"`
	Description     pipeline.Text       `json:"description"`
	SkillsPracticed pipeline.StringList `json:"skills_practiced"`
	GithubTemplate  pipeline.Text       `json:"github_template,omitempty"`
}

// Resources decodes a phase's resources. A bare string names a resource
// with nothing else known about it, so it is never verified.
type Resources []Resource

func (r *Resources) UnmarshalJSON(b []byte) error {
	items, err := pipeline.ObjectList(b, func(s string) Resource { return Resource{Name: pipeline.Text(s)} })
	if err != nil {
		return err
	}
	*r = items
	return nil
}

// Projects decodes a phase's projects; a bare string is the project name.
type Projects []Project

func (p *Projects) UnmarshalJSON(b []byte) error {
	items, err := pipeline.ObjectList(b, func(s string) Project { return Project{Name: pipeline.Text(s)} })
	if err != nil {
		return err
	}
	*p = items
	return nil
}

// Phase is one stage of the learning path.
type Phase struct {
	Phase         pipeline.Text       `json:"phase"`
	Duration      pipeline.Text       `json:"duration"`
	Description   pipeline.Text       `json:"description"`
	SkillsToLearn pipeline.StringList `json:"skills_to_learn"`
	Resources     Resources           `json:"resources"`
	Projects      Projects            `json:"projects"`
}

// Result is the structured learning path.
type Result struct {
	Outcome   pipeline.Outcome `json:"outcome"`
	Message   string           `json:"message,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`

	RoleAnalysis   pipeline.Text       `json:"role_analysis"`
	SkillsGap      pipeline.StringList `json:"skills_gap"`
	LearningPath   []Phase             `json:"learning_path"`
	Timeline       pipeline.Text       `json:"timeline"`
	SuccessMetrics pipeline.StringList `json:"success_metrics"`
	CareerAdvice   pipeline.Text       `json:"career_advice"`
	NetworkingTips pipeline.StringList `json:"networking_tips"`
}

// minRoleAnalysis is the shortest acceptable role analysis, after trimming.
const minRoleAnalysis = 50

var phaseKeys = []string{"phase", "description", "skills_to_learn"}

// Validate reports whether an extracted mapping has a usable role analysis,
// a non-empty skills gap and a non-empty list of well-formed phases.
func Validate(fields map[string]any) bool {
	if fields == nil {
		return false
	}
	analysis, ok := fields["role_analysis"].(string)
	if !ok || len([]rune(strings.TrimSpace(analysis))) < minRoleAnalysis {
		return false
	}
	gap, ok := fields["skills_gap"].([]any)
	if !ok || len(gap) == 0 {
		return false
	}
	phases, ok := fields["learning_path"].([]any)
	if !ok || len(phases) == 0 {
		return false
	}
	for _, p := range phases {
		phase, ok := p.(map[string]any)
		if !ok {
			return false
		}
		for _, key := range phaseKeys {
			if _, ok := phase[key]; !ok {
				return false
			}
		}
	}
	return true
}

// Decode reads a validated JSON object into a Result.
func Decode(raw json.RawMessage) (Result, error) {
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return Result{}, fmt.Errorf("decode learning path: %w", err)
	}
	res.Outcome = pipeline.OutcomeSuccess
	res.Message = ""
	res.ErrorCode = ""
	res.normalize()
	return res, nil
}

// normalize replaces nil lists so every result serialises with the same shape.
func (r *Result) normalize() {
	if r.SkillsGap == nil {
		r.SkillsGap = pipeline.StringList{}
	}
	if r.SuccessMetrics == nil {
		r.SuccessMetrics = pipeline.StringList{}
	}
	if r.NetworkingTips == nil {
		r.NetworkingTips = pipeline.StringList{}
	}
	if r.LearningPath == nil {
		r.LearningPath = []Phase{}
	}
	for i := range r.LearningPath {
		p := &r.LearningPath[i]
		if p.SkillsToLearn == nil {
			p.SkillsToLearn = pipeline.StringList{}
		}
		if p.Resources == nil {
			p.Resources = Resources{}
		}
		if p.Projects == nil {
			p.Projects = Projects{}
		}
		for j := range p.Projects {
			if p.Projects[j].SkillsPracticed == nil {
				p.Projects[j].SkillsPracticed = pipeline.StringList{}
			}
		}
	}
}

// ErrorResult reports a failed run in the normal result shape.
func ErrorResult(outcome pipeline.Outcome, message string) Result {
	res := Result{
		Outcome:      outcome,
		Message:      message,
		RoleAnalysis: pipeline.Text("Error occurred: " + message),
	}
	res.normalize()
	return res
}

// FallbackResult wraps a reply that had no JSON object in it.
func FallbackResult(raw string) Result {
	res := Result{
		Outcome:        pipeline.OutcomeDegraded,
		RoleAnalysis:   pipeline.Text(raw),
		SkillsGap:      pipeline.StringList{"Analysis completed"},
		Timeline:       "See detailed analysis above",
		SuccessMetrics: pipeline.StringList{"Review the analysis"},
		CareerAdvice:   pipeline.Text(raw),
		NetworkingTips: pipeline.StringList{"Refer to the analysis"},
	}
	res.normalize()
	return res
}

// DemoResult is stored when no provider is configured and demo mode is on.
func DemoResult() Result {
	return Result{
		Outcome:      pipeline.OutcomeDemo,
		RoleAnalysis: "Demo analysis: Based on your current skills and the target role, here's a comprehensive learning path to help you achieve your career goals.",
		SkillsGap: pipeline.StringList{
			"Advanced programming concepts",
			"System design and architecture",
			"Cloud computing platforms",
			"DevOps and CI/CD practices",
		},
		LearningPath: []Phase{
			{
				Phase:         "Phase 1: Foundation (2-3 months)",
				Duration:      "2-3 months",
				Description:   "Build strong fundamentals in advanced programming and system design",
				SkillsToLearn: pipeline.StringList{"Advanced Algorithms", "Data Structures", "System Design"},
				Resources: []Resource{{
					Type:        "course",
					Name:        "Advanced Algorithms Course",
					URL:         "https://coursera.org",
					Description: "Comprehensive algorithms course",
					Difficulty:  "intermediate",
					Verified:    true,
				}},
				Projects: []Project{{
					Name:            "Algorithm Implementation Project",
					Description:     "Implement and optimize various algorithms",
					SkillsPracticed: pipeline.StringList{"Algorithms", "Data Structures"},
					GithubTemplate:  "https://github.com/example",
				}},
			},
			{
				Phase:         "Phase 2: Specialization (3-4 months)",
				Duration:      "3-4 months",
				Description:   "Focus on cloud computing and modern development practices",
				SkillsToLearn: pipeline.StringList{"AWS/Azure", "Docker", "Kubernetes"},
				Resources: []Resource{{
					Type:        "course",
					Name:        "AWS Solutions Architect",
					URL:         "https://aws.amazon.com",
					Description: "AWS certification preparation",
					Difficulty:  "intermediate",
					Verified:    true,
				}},
				Projects: []Project{{
					Name:            "Cloud-Native Application",
					Description:     "Build and deploy a scalable application",
					SkillsPracticed: pipeline.StringList{"Cloud Computing", "DevOps"},
					GithubTemplate:  "https://github.com/example",
				}},
			},
		},
		Timeline: "6-8 months total",
		SuccessMetrics: pipeline.StringList{
			"Complete 3-4 major projects",
			"Earn relevant certifications",
			"Build a strong portfolio",
			"Network with industry professionals",
		},
		CareerAdvice: "Demo advice: Focus on building practical projects that demonstrate your skills. Network actively and consider contributing to open-source projects to gain visibility.",
		NetworkingTips: pipeline.StringList{
			"Join professional LinkedIn groups",
			"Attend industry meetups and conferences",
			"Participate in open-source projects",
			"Connect with mentors in your field",
		},
	}
}
