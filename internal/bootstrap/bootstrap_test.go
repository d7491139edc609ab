package bootstrap_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/config"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/ratelimit"
)

const projectsReply = "```json\n" + `[
 {"title":"A","description":"d","skills":["s"],"impact":"i","timeline":"t"},
 {"title":"B","description":"d","skills":["s"],"impact":"i","timeline":"t"},
 {"title":"C","description":"d","skills":["s"],"impact":"i","timeline":"t"}
]` + "\n```"

func testConfig(redisAddr string) *config.Config {
	return &config.Config{
		Service:   config.ServiceConfig{Name: "extracurricular", Version: "test", Port: 8095},
		Redis:     infraredis.Config{Address: redisAddr},
		LLM:       config.LLMConfig{Provider: config.ProviderAnthropic, MaxTokens: 512, MaxAttempts: 1},
		RateLimit: ratelimit.Config{PerMinute: 2, PerDay: 10},
		Scrape:    config.ScrapeConfig{Namespace: "scrape"},
	}
}

func newServer(t *testing.T) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig(mr.Addr())

	completer := llm.CompleterFunc(func(context.Context, llm.Request) (string, error) {
		return projectsReply, nil
	})

	return bootstrap.SetupHTTPServer(cfg, client, completer, logger.NewNop()).Router()
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const student = `{"gradeLevel":"10","location":"Toronto","interests":["robotics"]}`

func TestServer_GenerateIsRateLimited(t *testing.T) {
	h := newServer(t)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/generate/projects", student).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/generate/projects", student).Code)

	rec := serve(h, http.MethodPost, "/generate/projects", student)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "resetIn")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Other routes do not share the limiter.
	for range 3 {
		assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/opportunities", student).Code)
	}

	metricsRec := serve(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), `extracurricular_rate_limit_rejected_total{window="minute"} 1`)
	assert.Contains(t, metricsRec.Body.String(), `extracurricular_generations_total{kind="projects",outcome="success"} 2`)
	assert.Contains(t, metricsRec.Body.String(),
		`extracurricular_http_requests_total{method="POST",route="/generate/projects",status="429"} 1`)
}

func TestServer_HealthAndScrape(t *testing.T) {
	h := newServer(t)

	rec := serve(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "redis")

	rec = serve(h, http.MethodGet, "/health/memory", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "heap_alloc_mb")

	rec = serve(h, http.MethodPost, "/scrape",
		`{"url":"https://example.com","title":"t","content":"c","category":"news","labels":["a"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/scrape?category=news", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"news"`)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	c, err := bootstrap.NewProvider(ctx, config.LLMConfig{Provider: config.ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, c)

	c, err = bootstrap.NewProvider(ctx, config.LLMConfig{Provider: config.ProviderGemini, APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = bootstrap.NewProvider(ctx, config.LLMConfig{Provider: "openai"})
	require.Error(t, err)
}
