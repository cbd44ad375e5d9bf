package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/scoring"
	"go.uber.org/zap"
)

// SQLiteStore is a SQLite implementation of the ResultStore and
// CheckpointStore interfaces. The full score breakdown is not
// persisted; records loaded back carry the summary columns only.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create tables if they don't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classifications (
			document_id TEXT PRIMARY KEY,
			subject TEXT,
			sender TEXT,
			total_score INTEGER,
			max_score INTEGER,
			confidence_level TEXT,
			service_name TEXT,
			oracle_json TEXT,
			classified_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create classifications table: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			source_path TEXT PRIMARY KEY,
			last_index INTEGER,
			started_at TIMESTAMP,
			updated_at TIMESTAMP,
			status TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create checkpoints table: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Save upserts a record under its document ID.
func (s *SQLiteStore) Save(ctx context.Context, rec *core.ClassificationRecord) error {
	oracleJSON, err := marshalOracle(rec.Oracle)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO classifications
			(document_id, subject, sender, total_score, max_score, confidence_level, service_name, oracle_json, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.DocumentID, rec.Subject, rec.Sender, rec.TotalScore, rec.MaxScore,
		rec.Level.String(), rec.ServiceName, oracleJSON, rec.ClassifiedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert classification record: %w", err)
	}
	return nil
}

// Get retrieves a previously stored record, or core.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, documentID string) (*core.ClassificationRecord, error) {
	var rec core.ClassificationRecord
	var level, classifiedAt string
	var oracleJSON sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT document_id, subject, sender, total_score, max_score, confidence_level, service_name, oracle_json, classified_at
		FROM classifications
		WHERE document_id = ?
	`, documentID).Scan(&rec.DocumentID, &rec.Subject, &rec.Sender, &rec.TotalScore,
		&rec.MaxScore, &level, &rec.ServiceName, &oracleJSON, &classifiedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query classification record: %w", err)
	}

	rec.Level = scoring.ParseConfidenceLevel(level)
	rec.ClassifiedAt, err = time.Parse(time.RFC3339, classifiedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse classified_at timestamp: %w", err)
	}
	rec.Oracle, err = unmarshalOracle(oracleJSON)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}

// Delete removes a record.
func (s *SQLiteStore) Delete(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM classifications
		WHERE document_id = ?
	`, documentID)

	if err != nil {
		return fmt.Errorf("failed to delete classification record: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCheckpoint upserts batch progress for a source path.
func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO checkpoints (source_path, last_index, started_at, updated_at, status)
		VALUES (?, ?, ?, ?, ?)
	`, cp.SourcePath, cp.LastIndex, cp.StartedAt.Format(time.RFC3339),
		cp.UpdatedAt.Format(time.RFC3339), cp.Status)

	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint retrieves batch progress for a source path.
func (s *SQLiteStore) LoadCheckpoint(ctx context.Context, sourcePath string) (*core.Checkpoint, error) {
	var cp core.Checkpoint
	var startedAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT source_path, last_index, started_at, updated_at, status
		FROM checkpoints
		WHERE source_path = ?
	`, sourcePath).Scan(&cp.SourcePath, &cp.LastIndex, &startedAt, &updatedAt, &cp.Status)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query checkpoint: %w", err)
	}

	cp.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at timestamp: %w", err)
	}
	cp.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &cp, nil
}

// FinalizeCheckpoint marks a batch run as completed.
func (s *SQLiteStore) FinalizeCheckpoint(ctx context.Context, sourcePath string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checkpoints
		SET status = 'completed', updated_at = ?
		WHERE source_path = ?
	`, time.Now().Format(time.RFC3339), sourcePath)

	if err != nil {
		return fmt.Errorf("failed to finalize checkpoint: %w", err)
	}
	return nil
}

// marshalOracle serializes the oracle verdict for the oracle_json
// column; a nil verdict maps to NULL.
func marshalOracle(r *core.OracleResult) (sql.NullString, error) {
	if r == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to marshal oracle result: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalOracle(s sql.NullString) (*core.OracleResult, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var r core.OracleResult
	if err := json.Unmarshal([]byte(s.String), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal oracle result: %w", err)
	}
	return &r, nil
}
