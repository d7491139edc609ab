package generator

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

const (
	projectSystemPrompt = "You are a helpful assistant that generates extracurricular project ideas for high school students."
	emailSystemPrompt   = "You are a helpful assistant that generates professional emails for high school students."
)

// BuildProjectPrompt renders the project ideas prompt. Interests and skills
// keep their input order so equal inputs give equal prompts.
func BuildProjectPrompt(in domain.UserInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d project ideas based on the following:\n", ProjectCount)
	if in.Name != "" {
		fmt.Fprintf(&b, "- Student: %s\n", in.Name)
	}
	fmt.Fprintf(&b, "- Grade level: %s\n", in.GradeLevel)
	fmt.Fprintf(&b, "- Location: %s\n", in.Location)
	fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(in.Interests, ", "))
	if len(in.Skills) > 0 {
		fmt.Fprintf(&b, "- Skills: %s\n", strings.Join(in.Skills, ", "))
	}

	b.WriteString(`
For each project, include:
1. Title
2. Description (2-3 sentences)
3. Required skills (2-4 items)
4. Time commitment
5. Potential impact
6. Helpful resources (1-2 URLs with titles)

Format as a JSON array of exactly 3 objects:
{
  "title": "Project title",
  "description": "Project description",
  "requiredSkills": ["skill1", "skill2"],
  "timeCommitment": "Estimated time",
  "impact": "Description of impact",
  "resources": [{"url": "https://...", "title": "Resource title"}]
}`)

	return b.String()
}

// BuildEmailPrompt renders the outreach email prompt for opportunity.
func BuildEmailPrompt(in domain.UserInput, opportunity string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a professional cold outreach email for a grade %s student", in.GradeLevel)
	if in.Name != "" {
		fmt.Fprintf(&b, " named %s", in.Name)
	}
	fmt.Fprintf(&b, " from %s interested in %s.\n", in.Location, strings.Join(in.Interests, ", "))
	if len(in.Skills) > 0 {
		fmt.Fprintf(&b, "Relevant skills: %s.\n", strings.Join(in.Skills, ", "))
	}
	fmt.Fprintf(&b, "The email is regarding: %s\n", opportunity)

	b.WriteString(`
Format the response as a JSON object with:
- subject: string
- body: string
- recipient: string (suggested recipient type)`)

	return b.String()
}
