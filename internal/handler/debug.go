package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

const errInvalidAction = "Invalid action. Use: status, dump, clear, or test"

// debugSample is the record written by action=test.
func debugSample() domain.NewRecord {
	return domain.NewRecord{
		URL:      "https://example.com/test",
		Title:    "Test Article",
		Content:  "This is test content for Redis storage",
		Category: "test",
		Labels:   []string{"debug", "test"},
		Metadata: map[string]any{"source": "debug-api"},
	}
}

// DebugHandler serves GET /redis-debug.
type DebugHandler struct {
	store ScrapeStore
}

// NewDebugHandler creates a DebugHandler.
func NewDebugHandler(store ScrapeStore) *DebugHandler {
	return &DebugHandler{store: store}
}

// Handle dispatches on the action query parameter.
func (h *DebugHandler) Handle(c *gin.Context) {
	ctx := c.Request.Context()

	switch c.Query("action") {
	case "status":
		c.JSON(http.StatusOK, h.store.Stats(ctx))

	case "dump":
		dump, err := h.store.DumpAll(ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dump)

	case "clear":
		ok, err := h.store.ClearAll(ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})

	case "test":
		id, err := h.store.Store(ctx, debugSample())
		if err != nil {
			h.fail(c, err)
			return
		}
		dump, err := h.store.DumpAll(ctx)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "testId": id, "dump": dump})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidAction})
	}
}

func (h *DebugHandler) fail(c *gin.Context, err error) {
	logRejection(c, http.StatusInternalServerError, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
