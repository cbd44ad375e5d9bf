package store

import (
	"context"
	"sync"

	"github.com/maj/doc-classifier/internal/core"
	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the ResultStore and
// CheckpointStore interfaces. Everything is lost on restart; it exists
// for one-shot CLI runs and tests.
type MemoryStore struct {
	records     map[string]*core.ClassificationRecord
	checkpoints map[string]*core.Checkpoint
	mu          sync.RWMutex
	logger      *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		records:     make(map[string]*core.ClassificationRecord),
		checkpoints: make(map[string]*core.Checkpoint),
		logger:      logger,
	}
}

// Save upserts a record under its document ID.
func (s *MemoryStore) Save(ctx context.Context, rec *core.ClassificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.DocumentID] = rec
	return nil
}

// Get retrieves a previously stored record.
func (s *MemoryStore) Get(ctx context.Context, documentID string) (*core.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[documentID]
	if !ok {
		return nil, core.ErrNotFound
	}
	return rec, nil
}

// Delete removes a record.
func (s *MemoryStore) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, documentID)
	return nil
}

// Close releases nothing for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// SaveCheckpoint upserts batch progress for a source path.
func (s *MemoryStore) SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[cp.SourcePath] = cp
	return nil
}

// LoadCheckpoint retrieves batch progress for a source path.
func (s *MemoryStore) LoadCheckpoint(ctx context.Context, sourcePath string) (*core.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[sourcePath]
	if !ok {
		return nil, core.ErrNotFound
	}
	return cp, nil
}

// FinalizeCheckpoint marks a batch run as completed.
func (s *MemoryStore) FinalizeCheckpoint(ctx context.Context, sourcePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cp, ok := s.checkpoints[sourcePath]; ok {
		cp.Status = "completed"
	}
	return nil
}
