package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	infragin "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/gin"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/config"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/metrics"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/ratelimit"
)

// NewServer creates the HTTP server.
func NewServer(
	cfg *config.Config,
	h Handlers,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	redisClient *redis.Client,
	log logger.Logger,
) *infragin.Server {
	return infragin.NewServerBuilder(cfg.Service.Name, cfg.Service.Port).
		WithLogger(log).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithCORSOrigins(cfg.Service.CORSOrigins).
		WithRedisHealthCheck(func() error { return infraredis.Ping(redisClient) }).
		WithRoutes(func(router *gin.Engine) {
			SetupRoutes(router, h, limiter, m)
		}).
		Build()
}
