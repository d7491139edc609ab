package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/storage"
)

// ScrapeStore is the record store behind the scrape and debug endpoints.
type ScrapeStore interface {
	Store(ctx context.Context, in domain.NewRecord) (string, error)
	Get(ctx context.Context, id string) (domain.Record, bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	GetByCategory(ctx context.Context, category string) ([]domain.Record, error)
	GetByLabel(ctx context.Context, label string) ([]domain.Record, error)
	DumpAll(ctx context.Context) (storage.Dump, error)
	ClearAll(ctx context.Context) (bool, error)
	Stats(ctx context.Context) storage.Stats
}

const (
	errRetrieving      = "Error retrieving data"
	errStoring         = "Error storing data"
	errDeleting        = "Error deleting data"
	errMissingSelector = "Must provide category or label parameter"
	errRecordNotFound  = "Record not found"
)

// ScrapeHandler serves the /scrape endpoints.
type ScrapeHandler struct {
	store   ScrapeStore
	metrics *metrics.Metrics
}

// NewScrapeHandler creates a ScrapeHandler. m may be nil.
func NewScrapeHandler(store ScrapeStore, m *metrics.Metrics) *ScrapeHandler {
	return &ScrapeHandler{store: store, metrics: m}
}

func (h *ScrapeHandler) fail(c *gin.Context, op string, err error, fallback string) {
	status, msg := statusFor(err, fallback)
	h.metrics.StoreOp(op, outcomeFor(err))
	logRejection(c, status, err)
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// Create handles POST /scrape.
func (h *ScrapeHandler) Create(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, "store", domain.NewValidationError("", "unreadable body"), errStoring)
		return
	}
	in, err := domain.ParseNewRecord(body)
	if err != nil {
		h.fail(c, "store", err, errStoring)
		return
	}

	id, err := h.store.Store(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "store", err, errStoring)
		return
	}

	h.metrics.StoreOp("store", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// List handles GET /scrape?category=C or ?label=L. Category wins when both are given.
func (h *ScrapeHandler) List(c *gin.Context) {
	category := c.Query("category")
	label := c.Query("label")

	var (
		records []domain.Record
		err     error
	)
	switch {
	case category != "":
		records, err = h.store.GetByCategory(c.Request.Context(), category)
	case label != "":
		records, err = h.store.GetByLabel(c.Request.Context(), label)
	default:
		h.fail(c, "list", domain.NewValidationError("", errMissingSelector), errRetrieving)
		return
	}
	if err != nil {
		h.fail(c, "list", err, errRetrieving)
		return
	}

	h.metrics.StoreOp("list", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": records})
}

// Get handles GET /scrape/:id.
func (h *ScrapeHandler) Get(c *gin.Context) {
	rec, found, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get", err, errRetrieving)
		return
	}
	if !found {
		h.metrics.StoreOp("get", metrics.OutcomeSuccess)
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": errRecordNotFound})
		return
	}

	h.metrics.StoreOp("get", metrics.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

// Delete handles DELETE /scrape/:id.
func (h *ScrapeHandler) Delete(c *gin.Context) {
	deleted, err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "delete", err, errDeleting)
		return
	}

	h.metrics.StoreOp("delete", metrics.OutcomeSuccess)
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": errRecordNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
