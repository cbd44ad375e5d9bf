package scoring

import "strings"

// defaultPrefilterKeywords covers Czech and English subscription and
// billing vocabulary, stored accent-free: the candidate text is folded
// before the containment check.
var defaultPrefilterKeywords = []string{
	"predplatne", "predplatneho", "subscription", "abonnement",
	"clenstvi", "membership", "rocni poplatek", "monthly fee",
	"renewal", "license", "trial", "premium", "pro plan",
	"invoice", "faktura", "ucet", "bill", "payment", "platba",
	"receipt", "potvrzeni", "obnoveni", "prodlouzeni",
}

const prefilterBodyBudget = 2000

// Prefilter is a cheap keyword gate run before oracle consultation:
// mail with none of the keywords anywhere in the subject or the first
// two kilobytes of the body is not worth an LLM round trip.
type Prefilter struct {
	keywords []string
}

// NewPrefilter builds a prefilter; an empty keyword list falls back to
// the default subscription vocabulary.
func NewPrefilter(keywords []string) *Prefilter {
	if len(keywords) == 0 {
		keywords = defaultPrefilterKeywords
	}
	normalized := make([]string, len(keywords))
	for i, k := range keywords {
		normalized[i] = FoldAccents(strings.ToLower(k))
	}
	return &Prefilter{keywords: normalized}
}

// Matches reports whether the document might be relevant. Diacritics
// are folded so Czech text matches the accent-free keyword list.
func (p *Prefilter) Matches(subject, body string) bool {
	if len(body) > prefilterBodyBudget {
		body = body[:prefilterBodyBudget]
	}
	content := FoldAccents(strings.ToLower(subject + " " + body))
	for _, k := range p.keywords {
		if strings.Contains(content, k) {
			return true
		}
	}
	return false
}
