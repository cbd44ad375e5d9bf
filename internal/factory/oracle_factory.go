package factory

import (
	"fmt"

	"github.com/maj/doc-classifier/internal/config"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/utils"
	"go.uber.org/zap"
)

// OracleClientFactory creates oracle clients
type OracleClientFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOracleClientFactory creates a new oracle client factory
func NewOracleClientFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *OracleClientFactory {
	return &OracleClientFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateOracleClient creates a new oracle client based on the configuration
func (f *OracleClientFactory) CreateOracleClient() (core.OracleClient, error) {
	oracleCfg := f.cfg.GetOracle()

	switch oracleCfg.Provider {
	case "ollama":
		return NewOllamaFactory(f.cfg, f.logger, f.textProcessor).CreateOracleClient()
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger, f.textProcessor).CreateOracleClient()
	case "gemini":
		return NewGeminiFactory(f.cfg, f.logger, f.textProcessor).CreateOracleClient()
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger, f.textProcessor).CreateOracleClient()
	default:
		return nil, fmt.Errorf("unsupported oracle provider: %s", oracleCfg.Provider)
	}
}
