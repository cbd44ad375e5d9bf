package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/scoring"
	"go.uber.org/zap"
)

const mysqlTimeFormat = "2006-01-02 15:04:05"

// MySQLStore is a MySQL implementation of the ResultStore and
// CheckpointStore interfaces.
type MySQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLStore creates a new MySQL store
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create tables if they don't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classifications (
			document_id VARCHAR(255) PRIMARY KEY,
			subject TEXT,
			sender VARCHAR(255),
			total_score INT,
			max_score INT,
			confidence_level VARCHAR(16),
			service_name VARCHAR(255),
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
			source_path VARCHAR(255) PRIMARY KEY,
			last_index INT,
			started_at TIMESTAMP,
			updated_at TIMESTAMP,
			status VARCHAR(16)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create checkpoints table: %w", err)
	}

	return &MySQLStore{
		db:     db,
		logger: logger,
	}, nil
}

// Save upserts a record under its document ID.
func (s *MySQLStore) Save(ctx context.Context, rec *core.ClassificationRecord) error {
	oracleJSON, err := marshalOracle(rec.Oracle)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO classifications
			(document_id, subject, sender, total_score, max_score, confidence_level, service_name, oracle_json, classified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			subject = VALUES(subject),
			sender = VALUES(sender),
			total_score = VALUES(total_score),
			max_score = VALUES(max_score),
			confidence_level = VALUES(confidence_level),
			service_name = VALUES(service_name),
			oracle_json = VALUES(oracle_json),
			classified_at = VALUES(classified_at)
	`, rec.DocumentID, rec.Subject, rec.Sender, rec.TotalScore, rec.MaxScore,
		rec.Level.String(), rec.ServiceName, oracleJSON, rec.ClassifiedAt.Format(mysqlTimeFormat))

	if err != nil {
		return fmt.Errorf("failed to insert classification record: %w", err)
	}
	return nil
}

// Get retrieves a previously stored record, or core.ErrNotFound.
func (s *MySQLStore) Get(ctx context.Context, documentID string) (*core.ClassificationRecord, error) {
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
	rec.ClassifiedAt, err = time.Parse(mysqlTimeFormat, classifiedAt)
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
func (s *MySQLStore) Delete(ctx context.Context, documentID string) error {
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
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

// SaveCheckpoint upserts batch progress for a source path.
func (s *MySQLStore) SaveCheckpoint(ctx context.Context, cp *core.Checkpoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (source_path, last_index, started_at, updated_at, status)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			last_index = VALUES(last_index),
			updated_at = VALUES(updated_at),
			status = VALUES(status)
	`, cp.SourcePath, cp.LastIndex, cp.StartedAt.Format(mysqlTimeFormat),
		cp.UpdatedAt.Format(mysqlTimeFormat), cp.Status)

	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint retrieves batch progress for a source path.
func (s *MySQLStore) LoadCheckpoint(ctx context.Context, sourcePath string) (*core.Checkpoint, error) {
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

	cp.StartedAt, err = time.Parse(mysqlTimeFormat, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at timestamp: %w", err)
	}
	cp.UpdatedAt, err = time.Parse(mysqlTimeFormat, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at timestamp: %w", err)
	}

	return &cp, nil
}

// FinalizeCheckpoint marks a batch run as completed.
func (s *MySQLStore) FinalizeCheckpoint(ctx context.Context, sourcePath string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checkpoints
		SET status = 'completed', updated_at = ?
		WHERE source_path = ?
	`, time.Now().Format(mysqlTimeFormat), sourcePath)

	if err != nil {
		return fmt.Errorf("failed to finalize checkpoint: %w", err)
	}
	return nil
}
