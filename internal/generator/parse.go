package generator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

// ProjectCount is the number of ideas a reply must contain.
const ProjectCount = 3

// CleanJSON strips surrounding whitespace and a markdown code fence.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

type resourceWire struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// projectWire accepts both reply schemas: skills/timeline and requiredSkills/timeCommitment.
type projectWire struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Skills         []string       `json:"skills"`
	RequiredSkills []string       `json:"requiredSkills"`
	Timeline       string         `json:"timeline"`
	TimeCommitment string         `json:"timeCommitment"`
	Impact         string         `json:"impact"`
	Resources      []resourceWire `json:"resources"`
}

// ParseProjects decodes a completion into exactly ProjectCount ideas.
// A top-level {"projects": [...]} wrapper is accepted.
func ParseProjects(text string) ([]domain.ProjectIdea, error) {
	raw := []byte(CleanJSON(text))

	var wires []projectWire
	if err := json.Unmarshal(raw, &wires); err != nil {
		var wrapped struct {
			Projects []projectWire `json:"projects"`
		}
		if bytes.HasPrefix(raw, []byte("{")) && json.Unmarshal(raw, &wrapped) == nil && wrapped.Projects != nil {
			wires = wrapped.Projects
		} else {
			return nil, upstream("projects", "reply is not a JSON array of project ideas", err)
		}
	}

	if len(wires) != ProjectCount {
		return nil, upstream("projects", fmt.Sprintf("expected %d project ideas, got %d", ProjectCount, len(wires)), nil)
	}

	ideas := make([]domain.ProjectIdea, 0, len(wires))
	for i, w := range wires {
		idea, err := w.toIdea()
		if err != nil {
			return nil, upstream("projects", fmt.Sprintf("project %d: %s", i+1, err), nil)
		}
		ideas = append(ideas, idea)
	}
	return ideas, nil
}

func (w projectWire) toIdea() (domain.ProjectIdea, error) {
	skills := w.RequiredSkills
	if len(skills) == 0 {
		skills = w.Skills
	}
	timeline := w.TimeCommitment
	if timeline == "" {
		timeline = w.Timeline
	}

	switch {
	case strings.TrimSpace(w.Title) == "":
		return domain.ProjectIdea{}, errors.New("missing title")
	case strings.TrimSpace(w.Description) == "":
		return domain.ProjectIdea{}, errors.New("missing description")
	case len(skills) == 0:
		return domain.ProjectIdea{}, errors.New("missing skills")
	case strings.TrimSpace(timeline) == "":
		return domain.ProjectIdea{}, errors.New("missing time commitment")
	case strings.TrimSpace(w.Impact) == "":
		return domain.ProjectIdea{}, errors.New("missing impact")
	}

	var resources []domain.Resource
	for j, r := range w.Resources {
		u, err := url.Parse(r.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return domain.ProjectIdea{}, fmt.Errorf("resource %d: url must be absolute", j+1)
		}
		if strings.TrimSpace(r.Title) == "" {
			return domain.ProjectIdea{}, fmt.Errorf("resource %d: missing title", j+1)
		}
		resources = append(resources, domain.Resource{URL: r.URL, Title: r.Title})
	}

	return domain.ProjectIdea{
		Title:          w.Title,
		Description:    w.Description,
		RequiredSkills: skills,
		TimeCommitment: timeline,
		Impact:         w.Impact,
		Resources:      resources,
	}, nil
}

// ParseEmail decodes a completion into an email draft. "to" is accepted as
// an alias for recipient.
func ParseEmail(text string) (domain.Email, error) {
	var w struct {
		Subject   string `json:"subject"`
		Body      string `json:"body"`
		Recipient string `json:"recipient"`
		To        string `json:"to"`
	}
	if err := json.Unmarshal([]byte(CleanJSON(text)), &w); err != nil {
		return domain.Email{}, upstream("email", "reply is not a JSON email object", err)
	}

	if strings.TrimSpace(w.Subject) == "" {
		return domain.Email{}, upstream("email", "reply is missing subject", nil)
	}
	if strings.TrimSpace(w.Body) == "" {
		return domain.Email{}, upstream("email", "reply is missing body", nil)
	}

	recipient := w.Recipient
	if recipient == "" {
		recipient = w.To
	}
	return domain.Email{Subject: w.Subject, Body: w.Body, Recipient: recipient}, nil
}

func upstream(op, message string, err error) *domain.UpstreamError {
	return &domain.UpstreamError{Op: op, Message: message, Err: err}
}
