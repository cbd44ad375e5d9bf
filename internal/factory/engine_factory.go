package factory

import (
	"fmt"

	"github.com/maj/doc-classifier/internal/config"
	"github.com/maj/doc-classifier/internal/scoring"
	"go.uber.org/zap"
)

// EngineFactory builds compiled scoring engines with thresholds taken
// from configuration.
type EngineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config, logger *zap.Logger) *EngineFactory {
	return &EngineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEmailEngine compiles the subscription table for email scoring.
func (f *EngineFactory) CreateEmailEngine() (*scoring.Engine, error) {
	table := scoring.SubscriptionTable()
	table.Thresholds = f.thresholds("scoring.email_thresholds", table.Thresholds)

	engine, err := scoring.NewEngine(table, false, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build email scoring engine: %w", err)
	}
	return engine, nil
}

// CreateDocumentEngine compiles the document-typing table with OCR
// fuzzy matching enabled.
func (f *EngineFactory) CreateDocumentEngine() (*scoring.Engine, error) {
	table := scoring.DocumentTable()
	table.Thresholds = f.thresholds("scoring.document_thresholds", table.Thresholds)

	engine, err := scoring.NewEngine(table, true, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build document scoring engine: %w", err)
	}
	return engine, nil
}

// thresholds overlays configured tier boundaries on a table's defaults.
// Zero or out-of-range values keep the default.
func (f *EngineFactory) thresholds(prefix string, def scoring.Thresholds) scoring.Thresholds {
	out := def
	if v := f.cfg.GetFloat64(prefix + ".very_high"); v > 0 && v <= 1 {
		out.VeryHigh = v
	}
	if v := f.cfg.GetFloat64(prefix + ".high"); v > 0 && v <= 1 {
		out.High = v
	}
	if v := f.cfg.GetFloat64(prefix + ".medium"); v > 0 && v <= 1 {
		out.Medium = v
	}
	return out
}
