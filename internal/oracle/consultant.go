package oracle

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/maj/doc-classifier/internal/core"
)

// Config tunes the consultation policy. Zero values fall back to the
// documented defaults.
type Config struct {
	Timeout       time.Duration // per-attempt transport timeout
	Retry         RetryPolicy
	DocumentScale int  // maximum score of the document-typing domain
	BreakerOpen   bool // enable the circuit breaker
}

const defaultTimeout = 120 * time.Second

// Consultant wraps an OracleClient with the full consultation policy:
// per-attempt timeouts, retry with exponential backoff, an optional
// circuit breaker, and conversion of every failure into a typed
// degraded result. Only terminal results cross this boundary.
type Consultant struct {
	client  core.OracleClient
	cfg     Config
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewConsultant builds the policy around a concrete oracle client.
func NewConsultant(client core.OracleClient, cfg Config, logger *zap.Logger) *Consultant {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.DocumentScale <= 0 {
		cfg.DocumentScale = 200
	}
	c := &Consultant{client: client, cfg: cfg, logger: logger}
	if cfg.BreakerOpen {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "oracle",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Oracle circuit breaker state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}
	return c
}

// ConsultSubscription runs one full consultation for the subscription
// prompt shape. It never returns an error: exhausted retries, open
// breakers and schema mismatches all come back as degraded results
// with conservative negative defaults.
func (c *Consultant) ConsultSubscription(ctx context.Context, doc *core.Document) *core.OracleResult {
	var finding *core.SubscriptionFinding
	attempts, err := c.run(ctx, func(callCtx context.Context) error {
		f, callErr := c.client.DetectSubscription(callCtx, doc)
		if callErr != nil {
			return callErr
		}
		finding = f
		return nil
	})

	result := &core.OracleResult{
		ModelUsed:  c.client.ModelName(),
		Attempts:   attempts,
		AnalyzedAt: time.Now(),
	}
	if err != nil {
		status, reason := degradeFor(err)
		result.Status = status
		result.FailureReason = reason
		result.Subscription = &core.SubscriptionFinding{
			IsSubscription: false,
			Confidence:     0,
			Reasoning:      "Oracle unavailable: " + reason,
		}
		return result
	}
	finding.Confidence = clampConfidence(finding.Confidence)
	result.Status = core.OracleSuccess
	result.Subscription = finding
	return result
}

// ConsultDocument runs one full consultation for the document-typing
// prompt shape, with the same degradation contract.
func (c *Consultant) ConsultDocument(ctx context.Context, text, filename string) *core.OracleResult {
	var finding *core.DocumentFinding
	attempts, err := c.run(ctx, func(callCtx context.Context) error {
		f, callErr := c.client.ClassifyDocument(callCtx, text, filename)
		if callErr != nil {
			return callErr
		}
		finding = f
		return nil
	})

	result := &core.OracleResult{
		ModelUsed:  c.client.ModelName(),
		Attempts:   attempts,
		AnalyzedAt: time.Now(),
	}
	if err != nil {
		status, reason := degradeFor(err)
		result.Status = status
		result.FailureReason = reason
		result.Document = &core.DocumentFinding{
			DocumentType:      "other",
			Score:             0,
			ConfidencePercent: 0,
			Reasoning:         "Oracle unavailable: " + reason,
			Tags:              []string{"error", "needs_review"},
		}
		return result
	}
	if pct := finding.ConfidencePercent; pct < 0 || pct > 100 {
		finding.ConfidencePercent = float64(clampConfidence(int(pct)))
	}
	result.Status = core.OracleSuccess
	result.Document = finding
	return result
}

// run executes one attempt loop. Each attempt gets its own deadline;
// schema errors and open breakers abort the loop immediately.
func (c *Consultant) run(ctx context.Context, op func(context.Context) error) (int, error) {
	attempt := func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
		if c.breaker != nil {
			_, err := c.breaker.Execute(func() (any, error) {
				return nil, op(callCtx)
			})
			return err
		}
		return op(callCtx)
	}
	return c.cfg.Retry.Do(ctx, c.logger, attempt, func(err error) bool {
		if errors.Is(err, ErrSchema) {
			return false
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false
		}
		return true
	})
}

// degradeFor maps a terminal error to its degraded status and the
// failure reason callers surface to users.
func degradeFor(err error) (core.OracleStatus, string) {
	if isTimeout(err) {
		return core.OracleDegradedTimeout, "timeout"
	}
	return core.OracleDegradedError, err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
