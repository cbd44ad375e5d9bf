package scoring

// ConfidenceLevel is the ordinal classification-strength tier derived
// from the percentage score.
type ConfidenceLevel int

const (
	Low ConfidenceLevel = iota
	Medium
	High
	VeryHigh
)

func (l ConfidenceLevel) String() string {
	switch l {
	case VeryHigh:
		return "VERY_HIGH"
	case High:
		return "HIGH"
	case Medium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Accepted reports whether the tier maps to a positive classification.
func (l ConfidenceLevel) Accepted() bool {
	return l >= High
}

// ParseConfidenceLevel maps a tier name back to its ordinal. Unknown
// names map to Low.
func ParseConfidenceLevel(s string) ConfidenceLevel {
	switch s {
	case "VERY_HIGH":
		return VeryHigh
	case "HIGH":
		return High
	case "MEDIUM":
		return Medium
	default:
		return Low
	}
}

// Thresholds are the tier boundaries expressed as fractions of the
// domain's own maximum-possible score, so the same table shape ports
// across domains with different category ceilings.
type Thresholds struct {
	VeryHigh float64
	High     float64
	Medium   float64
}

// DefaultThresholds are the reference values for percentage-scaled
// domains: ≥90% VERY_HIGH, ≥75% HIGH, ≥50% MEDIUM.
func DefaultThresholds() Thresholds {
	return Thresholds{VeryHigh: 0.90, High: 0.75, Medium: 0.50}
}

// Classify maps a percentage in [0,100] to a confidence tier. It is a
// pure, total, order-preserving step function.
func (t Thresholds) Classify(percentage float64) ConfidenceLevel {
	switch {
	case percentage >= t.VeryHigh*100:
		return VeryHigh
	case percentage >= t.High*100:
		return High
	case percentage >= t.Medium*100:
		return Medium
	default:
		return Low
	}
}
