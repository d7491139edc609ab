package domain

import (
	"encoding/json"
	"strings"
)

// UserInput is the student profile submitted by the form.
type UserInput struct {
	Name       string   `json:"name,omitempty"`
	GradeLevel string   `json:"gradeLevel"`
	Location   string   `json:"location"`
	Interests  []string `json:"interests"`
	Skills     []string `json:"skills,omitempty"`
}

// Validate requires what prompt building needs: a grade level, a location and
// at least one interest.
func (u UserInput) Validate() error {
	if strings.TrimSpace(u.GradeLevel) == "" {
		return NewValidationError("gradeLevel", "is required")
	}
	if strings.TrimSpace(u.Location) == "" {
		return NewValidationError("location", "is required")
	}
	if len(nonEmpty(u.Interests)) == 0 {
		return NewValidationError("interests", "at least one interest is required")
	}
	return nil
}

// Clean trims whitespace and drops empty interests and skills.
func (u UserInput) Clean() UserInput {
	u.Name = strings.TrimSpace(u.Name)
	u.GradeLevel = strings.TrimSpace(u.GradeLevel)
	u.Location = strings.TrimSpace(u.Location)
	u.Interests = nonEmpty(u.Interests)
	u.Skills = nonEmpty(u.Skills)
	return u
}

// ParseUserInput decodes a student profile; it does not validate.
func ParseUserInput(data []byte) (UserInput, error) {
	var u UserInput
	if err := decodeStrict(data, &u); err != nil {
		return UserInput{}, err
	}
	return u.Clean(), nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Resource is a link attached to a project idea.
type Resource struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ProjectIdea is one generated extracurricular project.
type ProjectIdea struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	RequiredSkills []string   `json:"requiredSkills"`
	TimeCommitment string     `json:"timeCommitment"`
	Impact         string     `json:"impact"`
	Resources      []Resource `json:"resources,omitempty"`
}

// Email is a generated outreach email draft.
type Email struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Recipient string `json:"recipient,omitempty"`
}

// OpportunityType classifies catalogue entries.
type OpportunityType string

const (
	OpportunityCompetition OpportunityType = "competition"
	OpportunityProgram     OpportunityType = "program"
	OpportunityInternship  OpportunityType = "internship"
	OpportunityVolunteer   OpportunityType = "volunteer"
)

// Opportunity is an extracurricular opening a student may apply to.
type Opportunity struct {
	Title        string          `json:"title"`
	Organization string          `json:"organization"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	Type         OpportunityType `json:"type"`
	Deadline     string          `json:"deadline,omitempty"`
	URL          string          `json:"url,omitempty"`
}

// Summary renders the opportunity as a single line for prompts.
func (o Opportunity) Summary() string {
	var b strings.Builder
	b.WriteString(o.Title)
	if o.Organization != "" {
		b.WriteString(" at ")
		b.WriteString(o.Organization)
	}
	if o.Location != "" {
		b.WriteString(" (")
		b.WriteString(o.Location)
		b.WriteString(")")
	}
	if o.Description != "" {
		b.WriteString(": ")
		b.WriteString(o.Description)
	}
	return b.String()
}

// OpportunityRef is the opportunity field of an email request. Clients send
// either free text or a full catalogue entry.
type OpportunityRef struct {
	Text string
}

// UnmarshalJSON accepts a JSON string or an Opportunity object.
func (r *OpportunityRef) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		r.Text = strings.TrimSpace(text)
		return nil
	}

	var opp Opportunity
	if err := json.Unmarshal(data, &opp); err != nil {
		return NewValidationError("opportunity", "must be a string or an opportunity object")
	}
	r.Text = strings.TrimSpace(opp.Summary())
	return nil
}
