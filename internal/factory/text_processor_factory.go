package factory

import (
	"github.com/maj/doc-classifier/internal/utils"
	"go.uber.org/zap"
)

// TextProcessorFactory builds the text processor used to budget and
// sanitize document bodies before they reach the oracle.
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory.
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{logger: logger}
}

// CreateTextProcessor returns a processor sharing the factory's logger.
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(f.logger)
}
