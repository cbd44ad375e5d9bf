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

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := &core.ClassificationRecord{
		DocumentID:   "mail-1",
		Subject:      "Subscription renewal",
		Sender:       "billing@netflix.com",
		TotalScore:   180,
		MaxScore:     205,
		Level:        scoring.VeryHigh,
		ServiceName:  "Netflix",
		ClassifiedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "mail-1")
	require.NoError(t, err)
	assert.Equal(t, "Subscription renewal", got.Subject)
	assert.Equal(t, 180, got.TotalScore)
	assert.Equal(t, 205, got.MaxScore)
	assert.Equal(t, scoring.VeryHigh, got.Level)
	assert.Equal(t, "Netflix", got.ServiceName)
	assert.Nil(t, got.Oracle)
	// the summary columns are enough to reconstruct the decision
	assert.True(t, got.Accepted())
}

func TestSQLiteStoreOracleVerdictPersists(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := &core.ClassificationRecord{
		DocumentID: "mail-2",
		TotalScore: 120,
		MaxScore:   205,
		Level:      scoring.Medium,
		Oracle: &core.OracleResult{
			Status:       core.OracleSuccess,
			ModelUsed:    "llama3",
			Attempts:     2,
			Subscription: &core.SubscriptionFinding{IsSubscription: true, Confidence: 82, ServiceName: "SmallShop"},
		},
		ClassifiedAt: time.Now(),
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Get(ctx, "mail-2")
	require.NoError(t, err)
	require.NotNil(t, got.Oracle)
	assert.Equal(t, core.OracleSuccess, got.Oracle.Status)
	assert.Equal(t, 2, got.Oracle.Attempts)
	require.NotNil(t, got.Oracle.Subscription)
	assert.True(t, got.Oracle.Subscription.IsSubscription)
	// the stored positive verdict still decides acceptance
	assert.True(t, got.Accepted())
}

func TestSQLiteStoreSaveIsUpsert(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &core.ClassificationRecord{DocumentID: "d", TotalScore: 10, ClassifiedAt: time.Now()}))
	require.NoError(t, s.Save(ctx, &core.ClassificationRecord{DocumentID: "d", TotalScore: 20, ClassifiedAt: time.Now()}))

	got, err := s.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 20, got.TotalScore)
}

func TestSQLiteStoreMissingRecord(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStoreDelete(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &core.ClassificationRecord{DocumentID: "gone", ClassifiedAt: time.Now()}))
	require.NoError(t, s.Delete(ctx, "gone"))

	_, err := s.Get(ctx, "gone")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStoreCheckpointLifecycle(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := s.LoadCheckpoint(ctx, "/scans")
	assert.ErrorIs(t, err, core.ErrNotFound)

	started := time.Now().Truncate(time.Second)
	require.NoError(t, s.SaveCheckpoint(ctx, &core.Checkpoint{
		SourcePath: "/scans",
		LastIndex:  49,
		StartedAt:  started,
		UpdatedAt:  started,
		Status:     "running",
	}))

	cp, err := s.LoadCheckpoint(ctx, "/scans")
	require.NoError(t, err)
	assert.Equal(t, 49, cp.LastIndex)
	assert.Equal(t, "running", cp.Status)
	assert.True(t, cp.StartedAt.Equal(started))

	require.NoError(t, s.FinalizeCheckpoint(ctx, "/scans"))
	cp, err = s.LoadCheckpoint(ctx, "/scans")
	require.NoError(t, err)
	assert.Equal(t, "completed", cp.Status)
}
