package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
)

// OpportunityFinder matches a student against the opportunity catalogue.
type OpportunityFinder interface {
	Find(in domain.UserInput) []domain.Opportunity
}

// OpportunityHandler serves POST /opportunities.
type OpportunityHandler struct {
	finder  OpportunityFinder
	metrics *metrics.Metrics
}

// NewOpportunityHandler creates an OpportunityHandler. m may be nil.
func NewOpportunityHandler(finder OpportunityFinder, m *metrics.Metrics) *OpportunityHandler {
	return &OpportunityHandler{finder: finder, metrics: m}
}

// Find returns the matching opportunities in catalogue order.
func (h *OpportunityHandler) Find(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, domain.NewValidationError("", "unreadable body"), "")
		return
	}
	in, err := domain.ParseUserInput(body)
	if err != nil {
		respondError(c, err, "Failed to find opportunities")
		return
	}

	matches := h.finder.Find(in)
	h.metrics.Matches(len(matches))
	c.JSON(http.StatusOK, matches)
}
