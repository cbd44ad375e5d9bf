package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ToMap flattens the score into the stable key-value structure used
// for storage and interchange. Field names are part of the external
// contract and must not change.
func (s *Score) ToMap() map[string]any {
	breakdown := make(map[string]int, len(s.Breakdown.categories))
	for _, c := range s.Breakdown.Categories() {
		breakdown[c.Key] = c.Score
	}
	m := map[string]any{
		"total_score":           s.Breakdown.Total(),
		"max_possible":          s.Breakdown.MaxPossible(),
		"confidence_level":      s.Level.String(),
		"confidence_percentage": math.Round(s.Breakdown.Percentage()*100) / 100,
		"score_breakdown":       breakdown,
		"matched_patterns":      s.MatchedPatterns,
		"warnings":              s.Warnings,
		"suggestions":           s.Suggestions,
	}
	if s.table != nil && s.table.AcceptField != "" {
		m[s.table.AcceptField] = s.Accepted()
	}
	return m
}

// ToJSON serializes the flattened score.
func (s *Score) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s.ToMap(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize score: %w", err)
	}
	return string(data), nil
}

// Report renders a human-readable scoring report.
func (s *Score) Report() string {
	var b strings.Builder
	line := strings.Repeat("=", 80)

	b.WriteString(line + "\n")
	title := "SCORING REPORT"
	if s.table != nil {
		title = strings.ToUpper(s.table.Name) + " SCORING REPORT"
	}
	b.WriteString(title + "\n")
	b.WriteString(line + "\n\n")

	fmt.Fprintf(&b, "Total Score: %d/%d (%.1f%%)\n", s.Breakdown.Total(), s.Breakdown.MaxPossible(), s.Breakdown.Percentage())
	fmt.Fprintf(&b, "Confidence: %s\n", s.Level)
	accepted := "NO"
	if s.Accepted() {
		accepted = "YES"
	}
	fmt.Fprintf(&b, "Accepted: %s\n\n", accepted)

	b.WriteString("Score Breakdown:\n")
	for i, c := range s.Breakdown.Categories() {
		fmt.Fprintf(&b, "  %d. %s: %d\n", i+1, c.Key, c.Score)
	}
	b.WriteString("\n")

	if len(s.MatchedPatterns) > 0 {
		fmt.Fprintf(&b, "Matched Patterns (%d):\n", len(s.MatchedPatterns))
		for _, p := range s.MatchedPatterns {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
		b.WriteString("\n")
	}
	if len(s.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
		b.WriteString("\n")
	}
	if len(s.Suggestions) > 0 {
		b.WriteString("Suggestions:\n")
		for _, sg := range s.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", sg)
		}
		b.WriteString("\n")
	}

	b.WriteString(line + "\n")
	return b.String()
}
