package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSubscriptionResponse(t *testing.T) {
	t.Run("bare json", func(t *testing.T) {
		finding, err := ParseSubscriptionResponse(
			`{"is_subscription": true, "confidence": 90, "service_name": "Netflix", "reasoning": "renewal notice"}`)
		require.NoError(t, err)
		assert.True(t, finding.IsSubscription)
		assert.Equal(t, 90, finding.Confidence)
		assert.Equal(t, "Netflix", finding.ServiceName)
	})

	t.Run("fenced json", func(t *testing.T) {
		finding, err := ParseSubscriptionResponse(
			"```json\n{\"is_subscription\": false, \"confidence\": 20, \"reasoning\": \"newsletter\"}\n```")
		require.NoError(t, err)
		assert.False(t, finding.IsSubscription)
		assert.Equal(t, 20, finding.Confidence)
	})

	t.Run("json embedded in prose", func(t *testing.T) {
		finding, err := ParseSubscriptionResponse(
			`Sure! Here is the result: {"is_subscription": true, "confidence": 75, "reasoning": "ok"} Hope that helps.`)
		require.NoError(t, err)
		assert.True(t, finding.IsSubscription)
	})

	t.Run("confidence clamped", func(t *testing.T) {
		finding, err := ParseSubscriptionResponse(
			`{"is_subscription": true, "confidence": 250, "reasoning": "x"}`)
		require.NoError(t, err)
		assert.Equal(t, 100, finding.Confidence)
	})

	t.Run("not json is a schema error", func(t *testing.T) {
		_, err := ParseSubscriptionResponse("I think this is probably a subscription.")
		assert.ErrorIs(t, err, ErrSchema)
	})
}

func TestParseDocumentResponse(t *testing.T) {
	t.Run("percent recomputed from score", func(t *testing.T) {
		finding, err := ParseDocumentResponse(
			`{"document_type": "invoice", "score": 150, "confidence_percent": 3, "reasoning": "header"}`,
			DocumentScoreScale)
		require.NoError(t, err)
		assert.Equal(t, "invoice", finding.DocumentType)
		assert.InDelta(t, 75.0, finding.ConfidencePercent, 0.001)
	})

	t.Run("percent capped at 100", func(t *testing.T) {
		finding, err := ParseDocumentResponse(
			`{"document_type": "receipt", "score": 500, "reasoning": "x"}`,
			DocumentScoreScale)
		require.NoError(t, err)
		assert.Equal(t, float64(100), finding.ConfidencePercent)
	})

	t.Run("missing document_type is a schema error", func(t *testing.T) {
		_, err := ParseDocumentResponse(`{"score": 100, "reasoning": "x"}`, DocumentScoreScale)
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("malformed payload is a schema error", func(t *testing.T) {
		_, err := ParseDocumentResponse(`{"document_type": `, DocumentScoreScale)
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("tags pass through", func(t *testing.T) {
		finding, err := ParseDocumentResponse(
			`{"document_type": "court_order", "score": 180, "reasoning": "x", "tags": ["soudní-spis", "právní"]}`,
			DocumentScoreScale)
		require.NoError(t, err)
		assert.Equal(t, []string{"soudní-spis", "právní"}, finding.Tags)
	})
}

func TestStripResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without language", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", `prefix {"a":1} suffix`, `{"a":1}`},
		{"no braces", "just words", "just words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripResponse(tt.in))
		})
	}
}
