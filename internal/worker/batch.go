package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/maj/doc-classifier/internal/core"
	"go.uber.org/zap"
)

// batchSize bounds how many documents are in flight between two
// checkpoint writes.
const batchSize = 50

// Runner drives a batch of documents through a classify function on
// the pool, writing a checkpoint after every completed batch so an
// interrupted run resumes where it stopped.
type Runner struct {
	pool        *Pool
	checkpoints core.CheckpointStore
	logger      *zap.Logger
}

// NewRunner creates a batch runner. checkpoints may be nil, in which
// case every run starts from the beginning.
func NewRunner(pool *Pool, checkpoints core.CheckpointStore, logger *zap.Logger) *Runner {
	return &Runner{
		pool:        pool,
		checkpoints: checkpoints,
		logger:      logger,
	}
}

// Run classifies every document, resuming from a previous checkpoint
// for the same source path when one exists. It returns the number of
// documents processed in this invocation.
func (r *Runner) Run(ctx context.Context, sourcePath string, docs []*core.Document, classify func(context.Context, *core.Document)) (int, error) {
	start := 0
	startedAt := time.Now()

	if r.checkpoints != nil {
		cp, err := r.checkpoints.LoadCheckpoint(ctx, sourcePath)
		switch {
		case err == nil && cp.Status == "running":
			start = cp.LastIndex + 1
			startedAt = cp.StartedAt
			r.logger.Info("Resuming from checkpoint",
				zap.String("source", sourcePath),
				zap.Int("last_index", cp.LastIndex),
				zap.Int("remaining", len(docs)-start))
		case err != nil && !errors.Is(err, core.ErrNotFound):
			return 0, err
		}
	}

	processed := 0
	for begin := start; begin < len(docs); begin += batchSize {
		end := begin + batchSize
		if end > len(docs) {
			end = len(docs)
		}

		var wg sync.WaitGroup
		for _, doc := range docs[begin:end] {
			doc := doc
			wg.Add(1)
			task := func(taskCtx context.Context) {
				defer wg.Done()
				classify(taskCtx, doc)
			}
			if err := r.pool.Submit(ctx, task); err != nil {
				wg.Done()
				wg.Wait()
				return processed, err
			}
		}
		wg.Wait()
		processed += end - begin

		if r.checkpoints != nil {
			cp := &core.Checkpoint{
				SourcePath: sourcePath,
				LastIndex:  end - 1,
				StartedAt:  startedAt,
				UpdatedAt:  time.Now(),
				Status:     "running",
			}
			if err := r.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
				r.logger.Warn("Failed to save checkpoint",
					zap.String("source", sourcePath),
					zap.Error(err))
			}
		}

		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
	}

	if r.checkpoints != nil {
		if err := r.checkpoints.FinalizeCheckpoint(ctx, sourcePath); err != nil {
			r.logger.Warn("Failed to finalize checkpoint",
				zap.String("source", sourcePath),
				zap.Error(err))
		}
	}

	return processed, nil
}
