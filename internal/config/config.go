package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Gateway   GatewayConfig    `mapstructure:"gateway"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Analytics AnalyticsConfig  `mapstructure:"analytics"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	Log       LogConfig        `mapstructure:"log"`
	Providers []ProviderConfig `mapstructure:"providers"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	Env          string   `mapstructure:"env"`
	APIKeys      []string `mapstructure:"api_keys"`
	CheckUpdates bool     `mapstructure:"check_updates"`
}

type GatewayConfig struct {
	// ProviderTimeout bounds every single provider call.
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
}

type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
	Key      string `mapstructure:"key"`
	MaxLen   int64  `mapstructure:"max_len"`
}

type AnalyticsConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	// SampleRatio applies to root spans; children follow their parent.
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Pretty      bool    `mapstructure:"pretty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProviderConfig is one row of the provider registry.
type ProviderConfig struct {
	// ID is what callers toggle, e.g. "gpt4o"
	ID string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	// Type selects the adapter factory, e.g. "openai"
	Type string `json:"type" yaml:"type" mapstructure:"type" validate:"required"`
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	// Credential is the name callers use in the request credentials map
	Credential string `json:"credential" yaml:"credential" mapstructure:"credential" validate:"required"`
	// APIKey is the process-wide fallback secret; "ENV:VAR" reads VAR
	APIKey  string            `json:"-" yaml:"api_key" mapstructure:"api_key"`
	BaseURL string            `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Model   string            `json:"model" yaml:"model" mapstructure:"model"`
	Config  map[string]string `json:"config" yaml:"config" mapstructure:"config"`
	Enabled bool              `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
}

// DefaultProviders mirrors the providers the browser client knows about.
func DefaultProviders() []map[string]any {
	return []map[string]any{
		{"id": "gpt4o", "type": "openai", "name": "OpenAI GPT-4o", "credential": "openai",
			"api_key": "ENV:OPENAI_API_KEY", "model": "gpt-4o-mini", "enabled": true},
		{"id": "gemini", "type": "google", "name": "Google Gemini", "credential": "gemini",
			"api_key": "ENV:GEMINI_API_KEY", "model": "gemini-1.5-flash", "enabled": true},
		{"id": "claude", "type": "anthropic", "name": "Anthropic Claude", "credential": "anthropic",
			"api_key": "ENV:ANTHROPIC_API_KEY", "model": "claude-3-5-haiku-latest", "enabled": true},
		{"id": "grok", "type": "openai", "name": "xAI Grok", "credential": "xai",
			"api_key": "ENV:XAI_API_KEY", "base_url": "https://api.x.ai/v1", "model": "grok-2-latest",
			"config": map[string]any{"label": "xai"}, "enabled": true},
		{"id": "commandr", "type": "cohere", "name": "Cohere Command R", "credential": "cohere",
			"api_key": "ENV:COHERE_API_KEY", "model": "command-r", "enabled": true},
		{"id": "mistral", "type": "openai", "name": "Mistral", "credential": "mistral",
			"api_key": "ENV:MISTRAL_API_KEY", "base_url": "https://api.mistral.ai/v1", "model": "mistral-small-latest",
			"config": map[string]any{"label": "mistral"}, "enabled": true},
		{"id": "openrouter", "type": "openai", "name": "OpenRouter", "credential": "openrouter",
			"api_key": "ENV:OPENROUTER_API_KEY", "base_url": "https://openrouter.ai/api/v1", "model": "openrouter/auto",
			"config": map[string]any{"label": "openrouter", "title": "prism-fanout"}, "enabled": true},
	}
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetDefault("server.port", "5173")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.api_keys", []string{})
	v.SetDefault("server.check_updates", false)
	v.SetDefault("gateway.provider_timeout", 60*time.Second)
	v.SetDefault("database.enabled", true)
	v.SetDefault("database.path", "fanout.db")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "fanout:runs")
	v.SetDefault("redis.max_len", 10000)
	v.SetDefault("analytics.buffer_size", 10000)
	v.SetDefault("analytics.batch_size", 50)
	v.SetDefault("analytics.flush_interval", 5*time.Second)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "prism-fanout")
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("tracing.pretty", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("providers", DefaultProviders())

	// Environment Variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// Resolve API Keys
	for i, p := range cfg.Providers {
		if strings.HasPrefix(p.APIKey, "ENV:") {
			envVar := strings.TrimPrefix(p.APIKey, "ENV:")
			// Check process environment first (explicit override)
			val := os.Getenv(envVar)
			if val == "" {
				// Then check viper (which might have it from other sources)
				val = v.GetString(envVar)
			}
			cfg.Providers[i].APIKey = val
		}
	}

	return &cfg, nil
}

// FallbackCredentials returns credential name -> process-wide secret for every
// enabled provider that has one configured.
func (c *Config) FallbackCredentials() map[string]string {
	out := make(map[string]string)
	for _, p := range c.Providers {
		if !p.Enabled || p.Credential == "" || p.APIKey == "" {
			continue
		}
		if _, exists := out[p.Credential]; !exists {
			out[p.Credential] = p.APIKey
		}
	}
	return out
}
