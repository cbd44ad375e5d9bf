package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/scoring"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	rec := &core.ClassificationRecord{
		DocumentID:   "mail-1",
		Subject:      "Subscription renewal",
		Sender:       "billing@netflix.com",
		TotalScore:   180,
		MaxScore:     205,
		Level:        scoring.VeryHigh,
		ServiceName:  "Netflix",
		ClassifiedAt: time.Now(),
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "mail-1")
	require.NoError(t, err)
	assert.Equal(t, 180, got.TotalScore)
	assert.Equal(t, scoring.VeryHigh, got.Level)
	assert.True(t, got.Accepted())

	require.NoError(t, s.Delete(ctx, "mail-1"))
	_, err = s.Get(ctx, "mail-1")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStoreSaveIsUpsert(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &core.ClassificationRecord{DocumentID: "d", TotalScore: 10}))
	require.NoError(t, s.Save(ctx, &core.ClassificationRecord{DocumentID: "d", TotalScore: 20}))

	got, err := s.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 20, got.TotalScore)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStoreCheckpoints(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	_, err := s.LoadCheckpoint(ctx, "/scans")
	assert.ErrorIs(t, err, core.ErrNotFound)

	cp := &core.Checkpoint{SourcePath: "/scans", LastIndex: 49, Status: "running", StartedAt: time.Now()}
	require.NoError(t, s.SaveCheckpoint(ctx, cp))

	got, err := s.LoadCheckpoint(ctx, "/scans")
	require.NoError(t, err)
	assert.Equal(t, 49, got.LastIndex)
	assert.Equal(t, "running", got.Status)

	require.NoError(t, s.FinalizeCheckpoint(ctx, "/scans"))
	got, err = s.LoadCheckpoint(ctx, "/scans")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)

	// finalizing an unknown source is a no-op, not an error
	assert.NoError(t, s.FinalizeCheckpoint(ctx, "/other"))
}
