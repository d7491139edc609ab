package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
)

// Generator produces project ideas and outreach emails.
type Generator interface {
	GenerateProjects(ctx context.Context, in domain.UserInput) ([]domain.ProjectIdea, error)
	GenerateEmail(ctx context.Context, in domain.UserInput, opportunity string) (domain.Email, error)
}

// GenerateHandler serves the /generate endpoints.
type GenerateHandler struct {
	generator Generator
	metrics   *metrics.Metrics
}

// NewGenerateHandler creates a GenerateHandler. m may be nil.
func NewGenerateHandler(generator Generator, m *metrics.Metrics) *GenerateHandler {
	return &GenerateHandler{generator: generator, metrics: m}
}

// Projects handles POST /generate/projects.
func (h *GenerateHandler) Projects(c *gin.Context) {
	start := time.Now()

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, domain.NewValidationError("", "unreadable body"), "")
		return
	}
	in, err := domain.ParseUserInput(body)
	if err != nil {
		h.metrics.ObserveGeneration("projects", outcomeFor(err), time.Since(start))
		respondError(c, err, "")
		return
	}

	ideas, err := h.generator.GenerateProjects(c.Request.Context(), in)
	h.metrics.ObserveGeneration("projects", outcomeFor(err), time.Since(start))
	if err != nil {
		respondError(c, err, "Failed to generate project ideas")
		return
	}

	c.JSON(http.StatusOK, ideas)
}

// emailRequest accepts the student profile under any of the keys clients use.
type emailRequest struct {
	Opportunity *domain.OpportunityRef `json:"opportunity"`
	UserInput   json.RawMessage        `json:"userInput"`
	Student     json.RawMessage        `json:"student"`
	Input       json.RawMessage        `json:"input"`
}

func (r emailRequest) profile() json.RawMessage {
	for _, raw := range []json.RawMessage{r.UserInput, r.Student, r.Input} {
		if len(raw) > 0 && string(raw) != "null" {
			return raw
		}
	}
	return nil
}

func parseEmailRequest(body []byte) (domain.UserInput, string, error) {
	var req emailRequest
	if err := json.Unmarshal(body, &req); err != nil {
		if domain.IsValidation(err) {
			return domain.UserInput{}, "", err
		}
		return domain.UserInput{}, "", domain.NewValidationError("", "invalid JSON: "+err.Error())
	}

	raw := req.profile()
	if raw == nil {
		return domain.UserInput{}, "", domain.NewValidationError("userInput", "is required")
	}
	in, err := domain.ParseUserInput(raw)
	if err != nil {
		return domain.UserInput{}, "", err
	}
	if req.Opportunity == nil {
		return domain.UserInput{}, "", domain.NewValidationError("opportunity", "is required")
	}
	return in, req.Opportunity.Text, nil
}

// Email handles POST /generate/email.
func (h *GenerateHandler) Email(c *gin.Context) {
	start := time.Now()

	body, err := c.GetRawData()
	if err != nil {
		respondError(c, domain.NewValidationError("", "unreadable body"), "")
		return
	}
	in, opportunity, err := parseEmailRequest(body)
	if err != nil {
		h.metrics.ObserveGeneration("email", outcomeFor(err), time.Since(start))
		respondError(c, err, "")
		return
	}

	email, err := h.generator.GenerateEmail(c.Request.Context(), in, opportunity)
	h.metrics.ObserveGeneration("email", outcomeFor(err), time.Since(start))
	if err != nil {
		respondError(c, err, "Failed to generate email")
		return
	}

	c.JSON(http.StatusOK, email)
}
