package learningpaths

import (
	"fmt"
	"strings"

	"hirevision-backend/internal/pipeline"
)

// FormatMarkdown renders a learning path as a readable report. Only verified
// resources with a URL are linked; the rest carry a warning.
func FormatMarkdown(r Result) string {
	var b strings.Builder
	if r.Outcome.Failed() {
		fmt.Fprintf(&b, "## Learning path failed\n\n%s\n", r.Message)
		return b.String()
	}
	if r.Outcome == pipeline.OutcomeDemo {
		b.WriteString("_Demo data: no AI provider is configured._\n\n")
	}

	fmt.Fprintf(&b, "## Dream Role Analysis\n\n%s\n", orDefault(string(r.RoleAnalysis), "No analysis available"))
	b.WriteString("\n## Skills Gap Analysis\n\n")
	writeBullets(&b, r.SkillsGap)

	b.WriteString("\n## Detailed Learning Path\n")
	for _, phase := range r.LearningPath {
		fmt.Fprintf(&b, "\n### %s (%s)\n\n%s\n",
			orDefault(string(phase.Phase), "Phase"),
			orDefault(string(phase.Duration), "Duration TBD"),
			orDefault(string(phase.Description), "No description available"))

		b.WriteString("\n**Skills to Learn:**\n")
		writeBullets(&b, phase.SkillsToLearn)

		b.WriteString("\n**Learning Resources:**\n")
		for _, res := range phase.Resources {
			writeResource(&b, res)
		}

		b.WriteString("\n**Hands-on Projects:**\n")
		for _, p := range phase.Projects {
			fmt.Fprintf(&b, "\n**%s**\n- **Description**: %s\n- **Skills practiced**: %s\n",
				orDefault(string(p.Name), "Project Name"),
				orDefault(string(p.Description), "No description"),
				strings.Join(p.SkillsPracticed, ", "))
			if tmpl := strings.TrimSpace(string(p.GithubTemplate)); tmpl != "" {
				fmt.Fprintf(&b, "- **Template**: [GitHub Repository](%s)\n", tmpl)
			}
		}
		b.WriteString("\n---\n")
	}

	fmt.Fprintf(&b, "\n## Overall Timeline\n\n%s\n", orDefault(string(r.Timeline), "Timeline not available"))
	b.WriteString("\n## Success Metrics\n\n")
	writeBullets(&b, r.SuccessMetrics)
	fmt.Fprintf(&b, "\n## Career Advice\n\n%s\n", orDefault(string(r.CareerAdvice), "No career advice available"))
	b.WriteString("\n## Networking Tips\n\n")
	writeBullets(&b, r.NetworkingTips)
	return b.String()
}

func writeResource(b *strings.Builder, r Resource) {
	kind := orDefault(string(r.Type), "Resource")
	name := orDefault(string(r.Name), "Name")
	if r.Linkable() {
		fmt.Fprintf(b, "\n**%s**: [%s](%s)\n", kind, name, strings.TrimSpace(string(r.URL)))
	} else {
		fmt.Fprintf(b, "\n**%s**: %s\n", kind, name)
	}
	fmt.Fprintf(b, "- **Difficulty**: %s\n- **Why this resource**: %s\n",
		orDefault(string(r.Difficulty), "Not specified"),
		orDefault(string(r.Description), "No description"))
	if r.Linkable() {
		b.WriteString("- **Verified Resource**\n")
	} else {
		b.WriteString("- **Resource not verified - please research before using**\n")
	}
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
