package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	m := metrics.New()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/scrape/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/scrape/a", "/scrape/b", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, http.NoBody))
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `extracurricular_http_requests_total{method="GET",route="/scrape/:id",status="404"} 2`)
	assert.Contains(t, body, `extracurricular_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, "extracurricular_http_requests_in_flight 0")
}

func TestMiddleware_NilMetrics(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	var m *metrics.Metrics
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", http.NoBody))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
