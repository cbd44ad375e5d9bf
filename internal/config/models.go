package config

import "time"

// OracleConfig represents the consultation policy toward the oracle
type OracleConfig struct {
	Provider          string
	Mode              string
	Timeout           time.Duration
	MaxAttempts       int
	InitialDelay      time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration
	BreakerEnabled    bool
}

// OllamaConfig represents the configuration for a local Ollama server
type OllamaConfig struct {
	BaseURL     string
	ModelName   string
	NumPredict  int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// WorkerConfig represents the worker pool sizing limits
type WorkerConfig struct {
	Initial        int
	Min            int
	Max            int
	QueueSize      int
	AdjustInterval time.Duration
}

// GetOracle returns the oracle consultation configuration. Invalid
// duration strings fall back to zero values, which the consultant
// replaces with its own defaults.
func (c *Config) GetOracle() OracleConfig {
	timeout, _ := c.GetDuration("oracle.timeout")
	initial, _ := c.GetDuration("oracle.initial_delay")
	maxDelay, _ := c.GetDuration("oracle.max_delay")
	return OracleConfig{
		Provider:          c.GetString("oracle.provider"),
		Mode:              c.GetString("oracle.mode"),
		Timeout:           timeout,
		MaxAttempts:       c.GetInt("oracle.max_attempts"),
		InitialDelay:      initial,
		BackoffMultiplier: c.GetFloat64("oracle.backoff_multiplier"),
		MaxDelay:          maxDelay,
		BreakerEnabled:    c.GetBool("oracle.breaker_enabled"),
	}
}

// GetOllama returns the Ollama configuration
func (c *Config) GetOllama() OllamaConfig {
	return OllamaConfig{
		BaseURL:     c.GetString("ollama.base_url"),
		ModelName:   c.GetString("ollama.model_name"),
		NumPredict:  c.GetInt("ollama.num_predict"),
		Temperature: float32(c.GetFloat64("ollama.temperature")),
		TopP:        float32(c.GetFloat64("ollama.top_p")),
		MaxBodySize: c.GetInt("ollama.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetWorkers returns the worker pool configuration
func (c *Config) GetWorkers() WorkerConfig {
	interval, _ := c.GetDuration("workers.adjust_interval")
	return WorkerConfig{
		Initial:        c.GetInt("workers.initial"),
		Min:            c.GetInt("workers.min"),
		Max:            c.GetInt("workers.max"),
		QueueSize:      c.GetInt("workers.queue_size"),
		AdjustInterval: interval,
	}
}
