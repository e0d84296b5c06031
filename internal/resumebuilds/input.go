package resumebuilds

import (
	"net/mail"
	"net/url"
	"strings"

	"hirevision-backend/internal/llm"
)

// ContactInfo heads the resume.
type ContactInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Website  string `json:"website,omitempty"`
	Location string `json:"location,omitempty"`
}

type Education struct {
	Degree          string   `json:"degree"`
	Institution     string   `json:"institution"`
	Location        string   `json:"location,omitempty"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date,omitempty"`
	GPA             string   `json:"gpa,omitempty"`
	RelevantCourses []string `json:"relevant_courses,omitempty"`
	Honors          []string `json:"honors,omitempty"`
}

type Experience struct {
	Position     string   `json:"position"`
	Company      string   `json:"company"`
	Location     string   `json:"location,omitempty"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date,omitempty"`
	Description  []string `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	URL          string   `json:"url,omitempty"`
	GithubURL    string   `json:"github_url,omitempty"`
	Highlights   []string `json:"highlights,omitempty"`
	Role         string   `json:"role,omitempty"`
}

type Skills struct {
	ProgrammingLanguages []string `json:"programming_languages,omitempty"`
	Frameworks           []string `json:"frameworks,omitempty"`
	Tools                []string `json:"tools,omitempty"`
	Databases            []string `json:"databases,omitempty"`
	CloudPlatforms       []string `json:"cloud_platforms,omitempty"`
	SoftSkills           []string `json:"soft_skills,omitempty"`
	Certifications       []string `json:"certifications,omitempty"`
	Languages            []string `json:"languages,omitempty"`
}

type ResearchPaper struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors,omitempty"`
	Publication string   `json:"publication,omitempty"`
	Date        string   `json:"date,omitempty"`
	URL         string   `json:"url,omitempty"`
	Abstract    string   `json:"abstract,omitempty"`
}

type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
	Issuer      string `json:"issuer,omitempty"`
}

// Input is the structured candidate data a resume is built from.
type Input struct {
	ContactInfo    ContactInfo     `json:"contact_info"`
	Education      []Education     `json:"education"`
	Experience     []Experience    `json:"experience,omitempty"`
	Projects       []Project       `json:"projects"`
	Skills         Skills          `json:"skills"`
	ResearchPapers []ResearchPaper `json:"research_papers,omitempty"`
	Achievements   []Achievement   `json:"achievements,omitempty"`
	Others         []string        `json:"others,omitempty"`
}

// ValidationError carries a message meant for the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

const (
	minNameLen = 2
	maxNameLen = 100
)

// Validate checks the required sections and the shape of contact details.
func (in Input) Validate() error {
	name := strings.TrimSpace(in.ContactInfo.Name)
	if n := len([]rune(name)); n < minNameLen || n > maxNameLen {
		return invalid("Please provide your full name (2-100 characters).")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(in.ContactInfo.Email)); err != nil {
		return invalid("Please provide a valid email address.")
	}
	for _, link := range []string{in.ContactInfo.LinkedIn, in.ContactInfo.GitHub, in.ContactInfo.Website} {
		if !validURL(link) {
			return invalid("Profile links must be http or https URLs.")
		}
	}
	if len(in.Education) == 0 {
		return invalid("Please add at least one education entry.")
	}
	for _, e := range in.Education {
		if blank(e.Degree) || blank(e.Institution) || blank(e.StartDate) {
			return invalid("Each education entry needs a degree, institution and start date.")
		}
	}
	for _, e := range in.Experience {
		if blank(e.Position) || blank(e.Company) || blank(e.StartDate) {
			return invalid("Each experience entry needs a position, company and start date.")
		}
	}
	if len(in.Projects) == 0 {
		return invalid("Please add at least one project.")
	}
	for _, p := range in.Projects {
		if blank(p.Name) || blank(p.Description) {
			return invalid("Each project needs a name and description.")
		}
		if !validURL(p.URL) || !validURL(p.GithubURL) {
			return invalid("Project links must be http or https URLs.")
		}
	}
	for _, p := range in.ResearchPapers {
		if blank(p.Title) || !validURL(p.URL) {
			return invalid("Each research paper needs a title and a valid link.")
		}
	}
	for _, a := range in.Achievements {
		if blank(a.Title) {
			return invalid("Each achievement needs a title.")
		}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// validURL accepts empty strings and absolute http(s) URLs.
func validURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Sanitized returns a copy with every free-text field passed through
// llm.Sanitize. Links are kept as given since Validate already checked them.
func (in Input) Sanitized() Input {
	s := llm.Sanitize
	out := in
	out.ContactInfo.Name = s(in.ContactInfo.Name)
	out.ContactInfo.Email = s(in.ContactInfo.Email)
	out.ContactInfo.Phone = s(in.ContactInfo.Phone)
	out.ContactInfo.Location = s(in.ContactInfo.Location)

	out.Education = make([]Education, len(in.Education))
	for i, e := range in.Education {
		e.Degree, e.Institution, e.Location = s(e.Degree), s(e.Institution), s(e.Location)
		e.StartDate, e.EndDate, e.GPA = s(e.StartDate), s(e.EndDate), s(e.GPA)
		e.RelevantCourses, e.Honors = sanitizeAll(e.RelevantCourses), sanitizeAll(e.Honors)
		out.Education[i] = e
	}
	out.Experience = make([]Experience, len(in.Experience))
	for i, e := range in.Experience {
		e.Position, e.Company, e.Location = s(e.Position), s(e.Company), s(e.Location)
		e.StartDate, e.EndDate = s(e.StartDate), s(e.EndDate)
		e.Description, e.Technologies, e.Achievements = sanitizeAll(e.Description), sanitizeAll(e.Technologies), sanitizeAll(e.Achievements)
		out.Experience[i] = e
	}
	out.Projects = make([]Project, len(in.Projects))
	for i, p := range in.Projects {
		p.Name, p.Description, p.Duration, p.Role = s(p.Name), s(p.Description), s(p.Duration), s(p.Role)
		p.Technologies, p.Highlights = sanitizeAll(p.Technologies), sanitizeAll(p.Highlights)
		out.Projects[i] = p
	}
	out.Skills = Skills{
		ProgrammingLanguages: sanitizeAll(in.Skills.ProgrammingLanguages),
		Frameworks:           sanitizeAll(in.Skills.Frameworks),
		Tools:                sanitizeAll(in.Skills.Tools),
		Databases:            sanitizeAll(in.Skills.Databases),
		CloudPlatforms:       sanitizeAll(in.Skills.CloudPlatforms),
		SoftSkills:           sanitizeAll(in.Skills.SoftSkills),
		Certifications:       sanitizeAll(in.Skills.Certifications),
		Languages:            sanitizeAll(in.Skills.Languages),
	}
	out.ResearchPapers = make([]ResearchPaper, len(in.ResearchPapers))
	for i, p := range in.ResearchPapers {
		p.Title, p.Publication, p.Date, p.Abstract = s(p.Title), s(p.Publication), s(p.Date), s(p.Abstract)
		p.Authors = sanitizeAll(p.Authors)
		out.ResearchPapers[i] = p
	}
	out.Achievements = make([]Achievement, len(in.Achievements))
	for i, a := range in.Achievements {
		a.Title, a.Description, a.Date, a.Issuer = s(a.Title), s(a.Description), s(a.Date), s(a.Issuer)
		out.Achievements[i] = a
	}
	out.Others = sanitizeAll(in.Others)
	return out
}

func sanitizeAll(items []string) []string {
	if len(items) == 0 {
		return items
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if v := llm.Sanitize(item); v != "" {
			out = append(out, v)
		}
	}
	return out
}
