package bootstrap

import (
	"github.com/redis/go-redis/v9"

	infragin "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/api"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/config"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/generator"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/handler"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/opportunity"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/ratelimit"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/storage"
)

// SetupHTTPServer creates the services, handlers and HTTP server.
func SetupHTTPServer(
	cfg *config.Config,
	redisClient *redis.Client,
	completer llm.Completer,
	log logger.Logger,
) *infragin.Server {
	m := metrics.New()

	store := storage.NewRecordStore(redisClient, storage.Config{
		Namespace:    cfg.Scrape.Namespace,
		MaxTxRetries: cfg.Scrape.MaxTxRetries,
	}, log.With(logger.String("component", "storage")))

	gen := generator.NewService(completer, cfg.LLM.MaxTokens, log.With(logger.String("component", "generator")))
	matcher := opportunity.NewMatcher(opportunity.DefaultCatalogue())
	limiter := ratelimit.New(cfg.RateLimit, nil)

	handlers := api.Handlers{
		Generate:    handler.NewGenerateHandler(gen, m),
		Opportunity: handler.NewOpportunityHandler(matcher, m),
		Scrape:      handler.NewScrapeHandler(store, m),
		Debug:       handler.NewDebugHandler(store),
	}

	return api.NewServer(cfg, handlers, limiter, m, redisClient, log)
}
