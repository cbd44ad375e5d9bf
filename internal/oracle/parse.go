package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/maj/doc-classifier/internal/core"
)

// stripResponse removes markdown code fences and surrounding prose,
// leaving the JSON object the oracle was asked for. Models frequently
// wrap the payload despite instructions, so the brace scan is a
// fallback, not an error path.
func stripResponse(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return text
}

// clampConfidence bounds a self-reported confidence to [0,100]. The
// oracle's number is not inherently trustworthy.
func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ParseSubscriptionResponse parses the oracle's text as the
// subscription-detection payload. Any structural mismatch is wrapped
// in ErrSchema so the policy knows not to retry.
func ParseSubscriptionResponse(text string) (*core.SubscriptionFinding, error) {
	payload := stripResponse(text)
	var finding core.SubscriptionFinding
	if err := json.Unmarshal([]byte(payload), &finding); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	finding.Confidence = clampConfidence(finding.Confidence)
	return &finding, nil
}

// ParseDocumentResponse parses the oracle's text as the document-typing
// payload. The self-reported percent is recomputed locally from the
// score over maxScore and capped at 100.
func ParseDocumentResponse(text string, maxScore int) (*core.DocumentFinding, error) {
	payload := stripResponse(text)
	var finding core.DocumentFinding
	if err := json.Unmarshal([]byte(payload), &finding); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if finding.DocumentType == "" {
		return nil, fmt.Errorf("%w: missing document_type", ErrSchema)
	}
	if maxScore > 0 {
		pct := float64(finding.Score) / float64(maxScore) * 100
		if pct > 100 {
			pct = 100
		}
		if pct < 0 {
			pct = 0
		}
		finding.ConfidencePercent = pct
	}
	return &finding, nil
}
