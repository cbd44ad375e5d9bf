package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/maj/doc-classifier/internal/config"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/factory"
	"github.com/maj/doc-classifier/internal/logging"
	"github.com/maj/doc-classifier/internal/legal"
	"github.com/maj/doc-classifier/internal/oracle"
	"github.com/maj/doc-classifier/internal/ports"
	"github.com/maj/doc-classifier/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Oracle provider flags
	Provider    string
	OracleMode  string
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Ollama flags
	OllamaBaseURL   string
	OllamaModelName string

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Input flags
	InputFile  string
	InputDir   string
	OCRText    bool
	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Oracle provider flags
	flag.StringVar(&flags.Provider, "provider", "ollama", "Oracle provider (ollama, bedrock, gemini, openai)")
	flag.StringVar(&flags.OracleMode, "oracle-mode", "off", "Oracle consultation mode (off, review, always)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for oracle response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for oracle generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for oracle generation")
	flag.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum document body size to send to the oracle")

	// Ollama flags
	flag.StringVar(&flags.OllamaBaseURL, "ollama-url", "http://localhost:11434", "Base URL of the Ollama server")
	flag.StringVar(&flags.OllamaModelName, "ollama-model", "llama3", "Ollama model name")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4", "OpenAI model name")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input file (use stdin if not specified)")
	flag.StringVar(&flags.InputDir, "dir", "", "Directory of OCR text files to classify as a batch")
	flag.BoolVar(&flags.OCRText, "ocr", false, "Treat input as OCR'd document text instead of an email")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewOracleClientFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register oracle consultant when consultation is enabled
	if err := container.Provide(func(
		f *factory.OracleClientFactory,
		cfg *config.Config,
		logger *zap.Logger,
	) (core.OracleConsultant, error) {
		if core.OracleMode(cfg.GetString("oracle.mode")) == core.OracleOff {
			return nil, nil
		}
		client, err := f.CreateOracleClient()
		if err != nil {
			return nil, err
		}
		oc := cfg.GetOracle()
		return oracle.NewConsultant(client, oracle.Config{
			Timeout: oc.Timeout,
			Retry: oracle.RetryPolicy{
				MaxAttempts:  oc.MaxAttempts,
				InitialDelay: oc.InitialDelay,
				Multiplier:   oc.BackoffMultiplier,
				MaxDelay:     oc.MaxDelay,
			},
			DocumentScale: oracle.DocumentScoreScale,
		}, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register classifier service with no store
	if err := container.Provide(func(
		engines *factory.EngineFactory,
		consultant core.OracleConsultant,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.ClassifierService, error) {
		emailEngine, err := engines.CreateEmailEngine()
		if err != nil {
			return nil, err
		}
		documentEngine, err := engines.CreateDocumentEngine()
		if err != nil {
			return nil, err
		}
		var legalID core.LegalIdentifier
		if cfg.GetBool("legal.enabled") {
			legalID = legal.NewIdentifier(logger)
		}
		return core.NewClassifierService(
			emailEngine,
			documentEngine,
			nil, // prefilter is a serving-path optimization, not needed one-shot
			consultant,
			core.OracleMode(cfg.GetString("oracle.mode")),
			nil, // no trusted senders for CLI
			legalID,
			nil, // no per-record persistence; batch mode keeps its own checkpoint store
			logger,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register document filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.DocumentFilter, error) {
		return f.CreateDocumentFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)

	// Set oracle provider and mode
	v.Set("oracle.provider", flags.Provider)
	v.Set("oracle.mode", flags.OracleMode)

	// Set provider-specific configuration
	switch flags.Provider {
	case "ollama":
		v.Set("ollama.base_url", flags.OllamaBaseURL)
		v.Set("ollama.model_name", flags.OllamaModelName)
		v.Set("ollama.num_predict", flags.MaxTokens)
		v.Set("ollama.temperature", flags.Temperature)
		v.Set("ollama.top_p", flags.TopP)
		v.Set("ollama.max_body_size", flags.MaxBodySize)
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	return config.NewFromViper(v)
}
