package core

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/maj/doc-classifier/internal/scoring"
)

// ErrNotFound is returned by stores when no record exists for an ID.
var ErrNotFound = errors.New("record not found")

// OracleMode controls when the service delegates to the oracle.
type OracleMode string

const (
	// OracleOff never consults; the deterministic score stands alone.
	OracleOff OracleMode = "off"
	// OracleAlways consults for every document passing the prefilter.
	OracleAlways OracleMode = "always"
	// OracleReview consults only when the deterministic tier is
	// MEDIUM - confident accepts and rejects skip the round trip.
	OracleReview OracleMode = "review"
)

// OracleConsultant is the consultation policy boundary. It never
// fails: transport and schema errors come back as degraded results.
type OracleConsultant interface {
	ConsultSubscription(ctx context.Context, doc *Document) *OracleResult
	ConsultDocument(ctx context.Context, text, filename string) *OracleResult
}

// LegalFinding is the verdict of the optional legal-document
// capability.
type LegalFinding struct {
	DocumentType string
	Confidence   int
	Tags         []string
	Metadata     map[string]string
	IsLegal      bool
}

// LegalIdentifier is an optional capability the service checks once at
// construction; a nil identifier simply means the capability is absent.
type LegalIdentifier interface {
	Identify(text string) *LegalFinding
}

// TrustChecker reports whether a sender is trusted enough to skip
// oracle consultation.
type TrustChecker interface {
	IsTrusted(sender string) bool
}

// ClassifierService orchestrates the deterministic scoring engines,
// the oracle consultation policy and the result sink.
type ClassifierService struct {
	emailEngine    *scoring.Engine
	documentEngine *scoring.Engine
	prefilter      *scoring.Prefilter
	oracle         OracleConsultant
	oracleMode     OracleMode
	trust          TrustChecker
	legal          LegalIdentifier
	store          ResultStore
	logger         *zap.Logger
}

// NewClassifierService wires the service from explicitly constructed
// collaborators. oracle, trust, legal and store may be nil; the
// corresponding step is skipped.
func NewClassifierService(
	emailEngine *scoring.Engine,
	documentEngine *scoring.Engine,
	prefilter *scoring.Prefilter,
	oracle OracleConsultant,
	oracleMode OracleMode,
	trust TrustChecker,
	legal LegalIdentifier,
	store ResultStore,
	logger *zap.Logger,
) *ClassifierService {
	if oracleMode == "" {
		oracleMode = OracleOff
	}
	return &ClassifierService{
		emailEngine:    emailEngine,
		documentEngine: documentEngine,
		prefilter:      prefilter,
		oracle:         oracle,
		oracleMode:     oracleMode,
		trust:          trust,
		legal:          legal,
		store:          store,
		logger:         logger,
	}
}

// ClassifyEmail scores an email deterministically and, depending on
// configuration, refines the verdict with the oracle. The returned
// record always carries the deterministic score; oracle unavailability
// degrades the oracle part only.
func (s *ClassifierService) ClassifyEmail(ctx context.Context, doc *Document) (*ClassificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	score := s.emailEngine.Score(scoring.Input{
		Subject: doc.Subject,
		Sender:  doc.Sender,
		Body:    doc.Body,
		HTML:    doc.ContentType == ContentHTML,
	})

	rec := &ClassificationRecord{
		DocumentID:   doc.ID,
		Subject:      doc.Subject,
		Sender:       doc.Sender,
		Score:        score,
		TotalScore:   score.Breakdown.Total(),
		MaxScore:     score.Breakdown.MaxPossible(),
		Level:        score.Level,
		ClassifiedAt: time.Now(),
	}

	if s.shouldConsult(doc, score) {
		rec.Oracle = s.oracle.ConsultSubscription(ctx, doc)
		if rec.Oracle.Subscription != nil && rec.Oracle.Subscription.ServiceName != "" {
			rec.ServiceName = rec.Oracle.Subscription.ServiceName
		}
	}
	if rec.ServiceName == "" {
		rec.ServiceName = ExtractServiceName(doc.Sender)
	}

	s.logger.Info("Classified email",
		zap.String("document_id", doc.ID),
		zap.Int("total_score", score.Breakdown.Total()),
		zap.String("confidence", score.Level.String()),
		zap.Bool("accepted", rec.Accepted()),
		zap.Bool("oracle_consulted", rec.Oracle != nil))

	s.persist(ctx, rec)
	return rec, nil
}

// ClassifyDocument types an OCR'd document: deterministic scoring on
// the document table, the optional legal capability, and the oracle's
// document-typing prompt when configured.
func (s *ClassifierService) ClassifyDocument(ctx context.Context, doc *Document) (*ClassificationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	score := s.documentEngine.Score(scoring.Input{
		Subject: doc.Subject,
		Sender:  doc.Sender,
		Body:    doc.Body,
	})

	rec := &ClassificationRecord{
		DocumentID:   doc.ID,
		Subject:      doc.Subject,
		Sender:       doc.Sender,
		Score:        score,
		TotalScore:   score.Breakdown.Total(),
		MaxScore:     score.Breakdown.MaxPossible(),
		Level:        score.Level,
		ClassifiedAt: time.Now(),
	}

	if s.legal != nil {
		if finding := s.legal.Identify(doc.Body); finding != nil && finding.IsLegal {
			rec.Legal = finding
			rec.ServiceName = finding.DocumentType
			s.logger.Info("Legal document identified",
				zap.String("document_id", doc.ID),
				zap.String("type", finding.DocumentType),
				zap.Int("confidence", finding.Confidence))
		}
	}

	if s.oracle != nil && s.oracleMode != OracleOff {
		if s.oracleMode == OracleAlways || score.Level == scoring.Medium {
			rec.Oracle = s.oracle.ConsultDocument(ctx, doc.Body, doc.Filename)
		}
	}

	s.persist(ctx, rec)
	return rec, nil
}

// shouldConsult applies the consultation gate: configuration mode,
// trusted-sender bypass, then the keyword prefilter.
func (s *ClassifierService) shouldConsult(doc *Document, score *scoring.Score) bool {
	if s.oracle == nil || s.oracleMode == OracleOff {
		return false
	}
	if s.trust != nil && s.trust.IsTrusted(doc.Sender) {
		s.logger.Debug("Skipping oracle for trusted sender",
			zap.String("sender", doc.Sender),
			zap.String("action", "trust_bypass"))
		return false
	}
	if s.oracleMode == OracleReview && score.Level != scoring.Medium {
		return false
	}
	if s.prefilter != nil && !s.prefilter.Matches(doc.Subject, doc.Body) {
		s.logger.Debug("Skipping oracle, no relevant keywords",
			zap.String("document_id", doc.ID))
		return false
	}
	return true
}

func (s *ClassifierService) persist(ctx context.Context, rec *ClassificationRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Error("Failed to persist classification",
			zap.Error(err),
			zap.String("document_id", rec.DocumentID))
	}
}

var senderDomainRe = regexp.MustCompile(`@([a-zA-Z0-9.-]+)`)

// ExtractServiceName derives a service label from the sender address
// when the oracle returns none: first domain label, title-cased.
func ExtractServiceName(sender string) string {
	m := senderDomainRe.FindStringSubmatch(sender)
	if m == nil {
		return "Unknown"
	}
	label, _, _ := strings.Cut(m[1], ".")
	if len(label) <= 2 {
		return "Unknown"
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}
