package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/doc-classifier/")
	v.AddConfigPath("$HOME/.doc-classifier")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("DOC_CLASSIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Oracle defaults
	v.SetDefault("oracle.provider", "ollama")
	v.SetDefault("oracle.mode", "review")
	v.SetDefault("oracle.timeout", "120s")
	v.SetDefault("oracle.max_attempts", 3)
	v.SetDefault("oracle.initial_delay", "1s")
	v.SetDefault("oracle.backoff_multiplier", 2.0)
	v.SetDefault("oracle.max_delay", "30s")
	v.SetDefault("oracle.breaker_enabled", false)

	// Ollama defaults
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model_name", "llama3")
	v.SetDefault("ollama.num_predict", 1000)
	v.SetDefault("ollama.temperature", 0.1)
	v.SetDefault("ollama.top_p", 0.9)
	v.SetDefault("ollama.max_body_size", 4096)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Scoring defaults
	v.SetDefault("scoring.email_thresholds.very_high", 0.90)
	v.SetDefault("scoring.email_thresholds.high", 0.75)
	v.SetDefault("scoring.email_thresholds.medium", 0.50)
	v.SetDefault("scoring.document_thresholds.very_high", 0.75)
	v.SetDefault("scoring.document_thresholds.high", 0.60)
	v.SetDefault("scoring.document_thresholds.medium", 0.40)
	v.SetDefault("scoring.prefilter_enabled", true)

	// Legal identification defaults
	v.SetDefault("legal.enabled", true)

	// Server defaults
	v.SetDefault("server.filter_type", "postfix")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.tag_only", true)
	v.SetDefault("server.headers.status", "X-Subscription-Status")
	v.SetDefault("server.headers.score", "X-Subscription-Score")
	v.SetDefault("server.headers.reason", "X-Subscription-Reason")

	// Trust defaults
	v.SetDefault("trust.trusted_domains", []string{})

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.sqlite_path", "/data/classifications.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/doc_classifier")

	// Worker pool defaults
	v.SetDefault("workers.initial", 12)
	v.SetDefault("workers.min", 2)
	v.SetDefault("workers.max", 16)
	v.SetDefault("workers.queue_size", 256)
	v.SetDefault("workers.adjust_interval", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
