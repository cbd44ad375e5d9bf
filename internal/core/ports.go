package core

import (
	"context"
)

// OracleClient is the boundary toward the external generative-model
// inference service. Implementations issue a single request per call;
// retry, backoff and degradation live in the consultation policy, not
// in the client.
type OracleClient interface {
	// DetectSubscription asks the oracle whether the document is a
	// subscription notice.
	DetectSubscription(ctx context.Context, doc *Document) (*SubscriptionFinding, error)

	// ClassifyDocument asks the oracle to type an OCR'd document.
	ClassifyDocument(ctx context.Context, text, filename string) (*DocumentFinding, error)

	// ModelName identifies the backing model for result attribution.
	ModelName() string
}

// ResultStore persists classification records. Writes are idempotent
// keyed by the document ID, so repeated classification of the same
// document is safe to retry.
type ResultStore interface {
	// Save upserts a record under its document ID.
	Save(ctx context.Context, rec *ClassificationRecord) error

	// Get retrieves a previously stored record, or ErrNotFound.
	Get(ctx context.Context, documentID string) (*ClassificationRecord, error)

	// Delete removes a record.
	Delete(ctx context.Context, documentID string) error

	// Close releases underlying resources.
	Close() error
}

// CheckpointStore tracks resumable progress through batch sources.
// Stores that cannot persist checkpoints may return ErrNotFound from
// LoadCheckpoint and no-op the writes.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error
	LoadCheckpoint(ctx context.Context, sourcePath string) (*Checkpoint, error)
	FinalizeCheckpoint(ctx context.Context, sourcePath string) error
}
