package gin_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ginpkg "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infragin "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/gin"
)

func healthRouter(checks map[string]infragin.HealthChecker) *ginpkg.Engine {
	router := ginpkg.New()
	infragin.RegisterHealthRoutes(router, infragin.HealthOptions{
		ServiceName:    "extracurricular",
		ServiceVersion: "test",
		Checks:         checks,
	})
	return router
}

func TestHealth_HealthyWithoutChecks(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	healthRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)

	var resp infragin.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, infragin.HealthStatusHealthy, resp.Status)
	assert.Equal(t, "extracurricular", resp.Service)
}

func TestHealth_RedisDownIsUnavailable(t *testing.T) {
	t.Parallel()

	checks := map[string]infragin.HealthChecker{
		"redis": infragin.RedisHealthChecker(func() error { return errors.New("dial tcp: refused") }),
	}

	w := httptest.NewRecorder()
	healthRouter(checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp infragin.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, infragin.HealthStatusUnhealthy, resp.Checks["redis"].Status)
}

func TestHealth_Head(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	healthRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/health", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
}
