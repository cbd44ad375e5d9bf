package ports

import (
	"context"

	"github.com/maj/doc-classifier/internal/core"
)

// DocumentFilter defines the interface for document intake surfaces
// (SMTP content filter, CLI).
type DocumentFilter interface {
	// ProcessDocument classifies a document and returns the record
	ProcessDocument(ctx context.Context, doc *core.Document) (*core.ClassificationRecord, error)

	// Start starts the filter service
	Start() error

	// Stop stops the filter service
	Stop() error
}
