package core

import (
	"time"

	"github.com/maj/doc-classifier/internal/scoring"
)

// ContentType declares how a document body should be interpreted.
type ContentType string

const (
	ContentText ContentType = "text"
	ContentHTML ContentType = "html"
)

// Document is the unit of classification: an email or an OCR'd file.
// ID is the stable identity downstream sinks dedupe on (message id,
// file path); the classifier echoes it back untouched.
type Document struct {
	ID          string
	Subject     string
	Sender      string
	Recipient   string
	Body        string
	ContentType ContentType
	Filename    string
	Date        time.Time
}

// OracleStatus is the terminal state of a consultation.
type OracleStatus string

const (
	OracleSuccess         OracleStatus = "success"
	OracleDegradedTimeout OracleStatus = "degraded_timeout"
	OracleDegradedError   OracleStatus = "degraded_error"
	OracleSkipped         OracleStatus = "skipped"
)

// SubscriptionFinding is the oracle's structured verdict for the
// subscription-detection prompt shape.
type SubscriptionFinding struct {
	IsSubscription   bool     `json:"is_subscription"`
	Confidence       int      `json:"confidence"`
	ServiceName      string   `json:"service_name,omitempty"`
	Amount           *float64 `json:"amount,omitempty"`
	Currency         string   `json:"currency,omitempty"`
	SubscriptionType string   `json:"subscription_type,omitempty"`
	Reasoning        string   `json:"reasoning"`
}

// DocumentFinding is the oracle's structured verdict for the
// document-typing prompt shape.
type DocumentFinding struct {
	DocumentType      string   `json:"document_type"`
	Score             int      `json:"score"`
	ConfidencePercent float64  `json:"confidence_percent"`
	Reasoning         string   `json:"reasoning"`
	Tags              []string `json:"tags,omitempty"`
	Correspondent     string   `json:"correspondent,omitempty"`
	DetectedAmount    *float64 `json:"detected_amount,omitempty"`
	DetectedCurrency  string   `json:"detected_currency,omitempty"`
}

// OracleResult is the terminal outcome of one consultation. Exactly
// one of Subscription/Document is set on success; on degradation the
// finding carries conservative negative defaults and FailureReason
// explains why. A zero confidence alone never signals failure -
// callers must check FailureReason to distinguish degradation from a
// confident negative.
type OracleResult struct {
	Status        OracleStatus
	FailureReason string
	Subscription  *SubscriptionFinding
	Document      *DocumentFinding
	ModelUsed     string
	Attempts      int
	AnalyzedAt    time.Time
}

// Degraded reports whether the oracle failed to produce a usable
// verdict and the embedded finding is a conservative default.
func (r *OracleResult) Degraded() bool {
	return r.Status == OracleDegradedTimeout || r.Status == OracleDegradedError
}

// ClassificationRecord is the serializable end result for one
// document: the deterministic score plus the optional oracle verdict.
// Score carries the full live result; the summary fields duplicate its
// totals so records loaded back from a store keep their decision even
// though the full breakdown is not persisted.
type ClassificationRecord struct {
	DocumentID   string
	Subject      string
	Sender       string
	Score        *scoring.Score
	TotalScore   int
	MaxScore     int
	Level        scoring.ConfidenceLevel
	Oracle       *OracleResult
	Legal        *LegalFinding
	ServiceName  string
	ClassifiedAt time.Time
}

// Accepted is the final binary decision: the oracle's verdict wins
// when present and healthy, the deterministic tier decides otherwise.
func (r *ClassificationRecord) Accepted() bool {
	if r.Oracle != nil && r.Oracle.Status == OracleSuccess && r.Oracle.Subscription != nil {
		return r.Oracle.Subscription.IsSubscription
	}
	if r.Score != nil {
		return r.Score.Accepted()
	}
	return r.Level.Accepted()
}

// Checkpoint marks resumable progress through a batch source.
type Checkpoint struct {
	SourcePath string
	LastIndex  int
	StartedAt  time.Time
	UpdatedAt  time.Time
	Status     string // "running" or "completed"
}
