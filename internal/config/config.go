// Package config holds the extracurricular service configuration.
package config

import (
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/config"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/profiling"
	infraredis "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/redis"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/ratelimit"
)

// LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Default configuration values.
const (
	defaultServiceName  = "extracurricular"
	defaultVersion      = "0.1.0"
	defaultServicePort  = 8095
	defaultRedisAddress = "localhost:6379"
	defaultProvider     = ProviderAnthropic
	defaultMaxTokens    = 2048
	defaultLLMTimeout   = 60 * time.Second
	defaultMaxAttempts  = 3
	defaultNamespace    = "scrape"
	defaultTxRetries    = 10
)

// Config holds the application configuration.
type Config struct {
	Service   ServiceConfig     `yaml:"service"`
	Redis     infraredis.Config `yaml:"redis"`
	LLM       LLMConfig         `yaml:"llm"`
	RateLimit ratelimit.Config  `yaml:"rate_limit"`
	Scrape    ScrapeConfig      `yaml:"scrape"`
	Logging   logger.Config     `yaml:"logging"`
	Profiling profiling.Config  `yaml:"profiling"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Port        int      `env:"EXTRACURRICULAR_PORT" yaml:"port"`
	Debug       bool     `env:"APP_DEBUG"            yaml:"debug"`
	CORSOrigins []string `env:"CORS_ORIGINS"         yaml:"cors_origins"`
}

// LLMConfig selects and tunes the language model provider.
type LLMConfig struct {
	Provider    string        `env:"LLM_PROVIDER" yaml:"provider"`
	Model       string        `env:"LLM_MODEL"    yaml:"model"`
	APIKey      string        `env:"LLM_API_KEY"  yaml:"api_key"`
	BaseURL     string        `env:"LLM_BASE_URL" yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	MaxTokens   int           `yaml:"max_tokens"`
}

// ScrapeConfig configures the scrape store.
type ScrapeConfig struct {
	Namespace    string `env:"SCRAPE_NAMESPACE" yaml:"namespace"`
	MaxTxRetries int    `yaml:"max_tx_retries"`
}

// Load loads configuration from the specified path.
func Load(path string) (*Config, error) {
	return infraconfig.LoadWithDefaults[Config](path, setDefaults)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	setLLMDefaults(&cfg.LLM)
	if cfg.RateLimit.PerMinute == 0 {
		cfg.RateLimit.PerMinute = ratelimit.DefaultPerMinute
	}
	if cfg.RateLimit.PerDay == 0 {
		cfg.RateLimit.PerDay = ratelimit.DefaultPerDay
	}
	if cfg.Scrape.Namespace == "" {
		cfg.Scrape.Namespace = defaultNamespace
	}
	if cfg.Scrape.MaxTxRetries == 0 {
		cfg.Scrape.MaxTxRetries = defaultTxRetries
	}
	cfg.Logging.SetDefaults()
	cfg.Profiling.SetDefaults()
}

func setServiceDefaults(svc *ServiceConfig) {
	if svc.Name == "" {
		svc.Name = defaultServiceName
	}
	if svc.Version == "" {
		svc.Version = defaultVersion
	}
	if svc.Port == 0 {
		svc.Port = defaultServicePort
	}
}

func setLLMDefaults(llm *LLMConfig) {
	if llm.Provider == "" {
		llm.Provider = defaultProvider
	}
	if llm.Timeout == 0 {
		llm.Timeout = defaultLLMTimeout
	}
	if llm.MaxAttempts == 0 {
		llm.MaxAttempts = defaultMaxAttempts
	}
	if llm.MaxTokens == 0 {
		llm.MaxTokens = defaultMaxTokens
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("redis.address", c.Redis.Address); err != nil {
		return err
	}
	if err := infraconfig.ValidateOneOf("llm.provider", c.LLM.Provider, ProviderAnthropic, ProviderGemini); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("llm.api_key", c.LLM.APIKey); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("llm.max_tokens", c.LLM.MaxTokens); err != nil {
		return err
	}
	if err := infraconfig.ValidatePositive("llm.max_attempts", c.LLM.MaxAttempts); err != nil {
		return err
	}
	return infraconfig.ValidateLogLevel("logging.level", c.Logging.Level)
}
