package oracle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/maj/doc-classifier/internal/core"
)

// stubClient scripts a sequence of per-attempt outcomes.
type stubClient struct {
	calls    int
	errs     []error
	sub      *core.SubscriptionFinding
	docF     *core.DocumentFinding
	perCall  func(ctx context.Context)
	modelTag string
}

func (s *stubClient) next(ctx context.Context) error {
	if s.perCall != nil {
		s.perCall(ctx)
	}
	idx := s.calls
	s.calls++
	if idx < len(s.errs) && s.errs[idx] != nil {
		return s.errs[idx]
	}
	return nil
}

func (s *stubClient) DetectSubscription(ctx context.Context, doc *core.Document) (*core.SubscriptionFinding, error) {
	if err := s.next(ctx); err != nil {
		return nil, err
	}
	return s.sub, nil
}

func (s *stubClient) ClassifyDocument(ctx context.Context, text, filename string) (*core.DocumentFinding, error) {
	if err := s.next(ctx); err != nil {
		return nil, err
	}
	return s.docF, nil
}

func (s *stubClient) ModelName() string {
	if s.modelTag == "" {
		return "stub"
	}
	return s.modelTag
}

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     10 * time.Millisecond,
	}
}

func TestConsultSubscriptionSuccess(t *testing.T) {
	client := &stubClient{
		sub: &core.SubscriptionFinding{IsSubscription: true, Confidence: 85, ServiceName: "Spotify"},
	}
	c := NewConsultant(client, Config{Retry: fastRetry(3)}, zap.NewNop())

	res := c.ConsultSubscription(context.Background(), &core.Document{ID: "m1"})

	assert.Equal(t, core.OracleSuccess, res.Status)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "stub", res.ModelUsed)
	require.NotNil(t, res.Subscription)
	assert.True(t, res.Subscription.IsSubscription)
	assert.Equal(t, "Spotify", res.Subscription.ServiceName)
}

func TestConsultSubscriptionRetriesTransientErrors(t *testing.T) {
	client := &stubClient{
		errs: []error{errors.New("connection refused"), errors.New("connection refused"), nil},
		sub:  &core.SubscriptionFinding{IsSubscription: true, Confidence: 70},
	}
	c := NewConsultant(client, Config{Retry: fastRetry(3)}, zap.NewNop())

	res := c.ConsultSubscription(context.Background(), &core.Document{ID: "m2"})

	assert.Equal(t, core.OracleSuccess, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, client.calls)
}

func TestConsultSubscriptionExhaustedDegrades(t *testing.T) {
	fail := errors.New("service unavailable")
	client := &stubClient{errs: []error{fail, fail, fail}}
	c := NewConsultant(client, Config{Retry: fastRetry(3)}, zap.NewNop())

	res := c.ConsultSubscription(context.Background(), &core.Document{ID: "m3"})

	assert.Equal(t, core.OracleDegradedError, res.Status)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, "service unavailable", res.FailureReason)
	// the degraded finding is conservative, never positive
	require.NotNil(t, res.Subscription)
	assert.False(t, res.Subscription.IsSubscription)
	assert.Zero(t, res.Subscription.Confidence)
	assert.Contains(t, res.Subscription.Reasoning, "Oracle unavailable")
}

func TestConsultSubscriptionTimeoutStatus(t *testing.T) {
	client := &stubClient{
		errs: []error{context.DeadlineExceeded, context.DeadlineExceeded, context.DeadlineExceeded},
	}
	c := NewConsultant(client, Config{Retry: fastRetry(3)}, zap.NewNop())

	res := c.ConsultSubscription(context.Background(), &core.Document{ID: "m4"})

	assert.Equal(t, core.OracleDegradedTimeout, res.Status)
	assert.Equal(t, "timeout", res.FailureReason)
}

func TestConsultSubscriptionSchemaErrorNoRetry(t *testing.T) {
	client := &stubClient{
		errs: []error{ErrSchema, nil},
		sub:  &core.SubscriptionFinding{IsSubscription: true},
	}
	c := NewConsultant(client, Config{Retry: fastRetry(3)}, zap.NewNop())

	res := c.ConsultSubscription(context.Background(), &core.Document{ID: "m5"})

	// schema mismatches are terminal: one attempt, no retry
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, core.OracleDegradedError, res.Status)
}

func TestConsultSubscriptionClampsConfidence(t *testing.T) {
	client := &stubClient{
		sub: &core.SubscriptionFinding{IsSubscription: true, Confidence: 300},
	}
	c := NewConsultant(client, Config{Retry: fastRetry(1)}, zap.NewNop())

	res := c.ConsultSubscription(context.Background(), &core.Document{ID: "m6"})

	assert.Equal(t, 100, res.Subscription.Confidence)
}

func TestConsultDocumentDegradedDefaults(t *testing.T) {
	fail := errors.New("boom")
	client := &stubClient{errs: []error{fail, fail}}
	c := NewConsultant(client, Config{Retry: fastRetry(2)}, zap.NewNop())

	res := c.ConsultDocument(context.Background(), "some text", "scan.txt")

	assert.Equal(t, core.OracleDegradedError, res.Status)
	require.NotNil(t, res.Document)
	assert.Equal(t, "other", res.Document.DocumentType)
	assert.Zero(t, res.Document.Score)
	assert.Contains(t, res.Document.Tags, "needs_review")
	assert.True(t, res.Degraded())
}

func TestConsultDocumentSuccess(t *testing.T) {
	client := &stubClient{
		docF: &core.DocumentFinding{DocumentType: "invoice", Score: 170, ConfidencePercent: 85},
	}
	c := NewConsultant(client, Config{Retry: fastRetry(1)}, zap.NewNop())

	res := c.ConsultDocument(context.Background(), "FAKTURA", "scan.txt")

	assert.Equal(t, core.OracleSuccess, res.Status)
	assert.Equal(t, "invoice", res.Document.DocumentType)
	assert.False(t, res.Degraded())
}

func TestConsultPerAttemptDeadline(t *testing.T) {
	var sawDeadline bool
	client := &stubClient{
		perCall: func(ctx context.Context) {
			_, sawDeadline = ctx.Deadline()
		},
		sub: &core.SubscriptionFinding{IsSubscription: false},
	}
	c := NewConsultant(client, Config{Timeout: time.Second, Retry: fastRetry(1)}, zap.NewNop())

	c.ConsultSubscription(context.Background(), &core.Document{ID: "m7"})

	assert.True(t, sawDeadline, "each attempt should carry its own deadline")
}

func TestConsultBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	fail := errors.New("down")
	client := &stubClient{
		errs: []error{fail, fail, fail, fail, fail, fail, fail, fail, fail, fail},
	}
	c := NewConsultant(client, Config{Retry: fastRetry(1), BreakerOpen: true}, zap.NewNop())

	// five consecutive failures trip the breaker
	for i := 0; i < 5; i++ {
		res := c.ConsultSubscription(context.Background(), &core.Document{ID: "b"})
		assert.Equal(t, core.OracleDegradedError, res.Status)
	}
	callsBefore := client.calls

	res := c.ConsultSubscription(context.Background(), &core.Document{ID: "b"})

	assert.Equal(t, core.OracleDegradedError, res.Status)
	assert.Equal(t, callsBefore, client.calls, "open breaker must not reach the client")
}

func TestRetryPolicyDo(t *testing.T) {
	logger := zap.NewNop()

	t.Run("counts attempts", func(t *testing.T) {
		calls := 0
		attempts, err := fastRetry(3).Do(context.Background(), logger, func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, nil)
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("non-retryable stops immediately", func(t *testing.T) {
		calls := 0
		attempts, err := fastRetry(3).Do(context.Background(), logger, func() error {
			calls++
			return ErrSchema
		}, func(err error) bool { return !errors.Is(err, ErrSchema) })
		assert.ErrorIs(t, err, ErrSchema)
		assert.Equal(t, 1, attempts)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := fastRetry(3).Do(ctx, logger, func() error {
			return errors.New("transient")
		}, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("delays double between attempts", func(t *testing.T) {
		policy := RetryPolicy{
			MaxAttempts:  3,
			InitialDelay: 20 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     time.Second,
		}

		var stamps []time.Time
		attempts, err := policy.Do(context.Background(), logger, func() error {
			stamps = append(stamps, time.Now())
			return errors.New("transient")
		}, nil)
		assert.Error(t, err)
		assert.Equal(t, 3, attempts)
		require.Len(t, stamps, 3)

		first := stamps[1].Sub(stamps[0])
		second := stamps[2].Sub(stamps[1])
		assert.GreaterOrEqual(t, first, 20*time.Millisecond)
		assert.GreaterOrEqual(t, second, 40*time.Millisecond)
	})

	t.Run("delay is capped at MaxDelay", func(t *testing.T) {
		policy := RetryPolicy{
			MaxAttempts:  3,
			InitialDelay: 30 * time.Millisecond,
			Multiplier:   10.0,
			MaxDelay:     40 * time.Millisecond,
		}

		var stamps []time.Time
		_, err := policy.Do(context.Background(), logger, func() error {
			stamps = append(stamps, time.Now())
			return errors.New("transient")
		}, nil)
		assert.Error(t, err)
		require.Len(t, stamps, 3)
		assert.Less(t, stamps[2].Sub(stamps[1]), 200*time.Millisecond)
	})
}
