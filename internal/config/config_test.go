package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/ratelimit"
)

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, defaultServiceName, cfg.Service.Name)
	assert.Equal(t, defaultServicePort, cfg.Service.Port)
	assert.Equal(t, defaultRedisAddress, cfg.Redis.Address)
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, defaultLLMTimeout, cfg.LLM.Timeout)
	assert.Equal(t, defaultMaxTokens, cfg.LLM.MaxTokens)
	assert.Equal(t, ratelimit.DefaultPerMinute, cfg.RateLimit.PerMinute)
	assert.Equal(t, ratelimit.DefaultPerDay, cfg.RateLimit.PerDay)
	assert.Equal(t, "scrape", cfg.Scrape.Namespace)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
service:
  port: 9000
llm:
  provider: gemini
  timeout: 15s
rate_limit:
  per_minute: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("RATE_LIMIT_PER_DAY", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Service.Port)
	assert.Equal(t, ProviderGemini, cfg.LLM.Provider)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, 2, cfg.RateLimit.PerMinute)
	assert.Equal(t, 7, cfg.RateLimit.PerDay)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		cfg.LLM.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing api key", mutate: func(c *Config) { c.LLM.APIKey = "" }, wantErr: "llm.api_key: is required"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "other" }, wantErr: "llm.provider"},
		{name: "bad port", mutate: func(c *Config) { c.Service.Port = 70000 }, wantErr: "service.port"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantErr: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
