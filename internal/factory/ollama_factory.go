package factory

import (
	"net/http"

	"github.com/maj/doc-classifier/internal/adapters/ollama"
	"github.com/maj/doc-classifier/internal/config"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/utils"
	"go.uber.org/zap"
)

// OllamaFactory creates Ollama oracle clients
type OllamaFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOllamaFactory creates a new Ollama factory
func NewOllamaFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *OllamaFactory {
	return &OllamaFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateOracleClient creates an Ollama oracle client. The HTTP client
// carries no timeout of its own; per-attempt deadlines come from the
// consultation policy's context.
func (f *OllamaFactory) CreateOracleClient() (core.OracleClient, error) {
	ollamaCfg := f.cfg.GetOllama()

	return ollama.NewOllamaClient(
		&http.Client{},
		ollamaCfg.BaseURL,
		ollamaCfg.ModelName,
		ollamaCfg.NumPredict,
		ollamaCfg.Temperature,
		ollamaCfg.TopP,
		ollamaCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}
