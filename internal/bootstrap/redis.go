package bootstrap

import (
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/config"
)

// SetupRedis connects to the scrape store backend. The store is required,
// so a failed ping aborts startup.
func SetupRedis(cfg *config.Config, log logger.Logger) (*redis.Client, error) {
	client, err := infraredis.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	log.Info("Redis connected",
		logger.String("redis_address", cfg.Redis.Address),
		logger.Int("redis_db", cfg.Redis.DB),
	)
	return client, nil
}
