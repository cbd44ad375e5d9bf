// Package scoring implements the deterministic, explainable multi-category
// scoring engine. A Table declares the pattern rules, category ceilings,
// combination bonuses and confidence thresholds for one classification
// domain; an Engine evaluates documents against a compiled Table.
package scoring

import (
	"fmt"
	"regexp"
)

// AggMode controls how matched rules within a category are aggregated.
type AggMode int

const (
	// BestMatch takes the highest point value among matched rules.
	BestMatch AggMode = iota
	// Additive sums every matched rule, clamped at the category ceiling.
	Additive
)

// Scope controls what text a rule is evaluated against.
type Scope int

const (
	// ScopeText runs the pattern against the normalized combined
	// subject+sender+body text, with fuzzy OCR tolerance when enabled.
	ScopeText Scope = iota
	// ScopeSenderRegex runs the pattern against the lowercased sender
	// address only, without fuzzy variants.
	ScopeSenderRegex
	// ScopeSenderDomain checks membership of the sender address against
	// the rule's Domains list (substring, lowercased).
	ScopeSenderDomain
	// ScopeHTMLLiteral does a literal substring check against the raw
	// body, and only when the document is declared as HTML.
	ScopeHTMLLiteral
	// ScopeRaw runs the pattern case-sensitively against the raw combined
	// text, skipping normalization. Used for shout/punctuation signals
	// that normalization would otherwise erase.
	ScopeRaw
)

// Rule is a single named pattern with a point value and category.
// Rules are immutable once the table is compiled.
type Rule struct {
	Name        string
	Category    string
	Pattern     string
	Points      int
	Scope       Scope
	Domains     []string // ScopeSenderDomain only
	Description string   // used for warnings on negative rules
}

// CategoryDef declares one scoring category and its ceiling.
// For negative categories the ceiling is the maximum penalty magnitude.
type CategoryDef struct {
	Key      string
	Ceiling  int
	Mode     AggMode
	Negative bool
}

// Combo is a combination bonus awarded when all required rules matched.
// Exclusive combos are evaluated in declaration order and only the first
// satisfied one contributes; non-exclusive combos stack on top.
type Combo struct {
	Name      string
	Requires  []string
	Points    int
	Exclusive bool
}

// ComputedCategory is a category whose score is derived by a function of
// the input rather than by pattern rules (e.g. OCR legibility estimation).
type ComputedCategory struct {
	Key     string
	Ceiling int
	Fn      func(in Input) (points int, matched []string)
}

// Suggestion is a heuristic check over a finished breakdown. Checks run
// in declaration order; each fires independently.
type Suggestion struct {
	Text string
	When func(b *Breakdown) bool
}

// Table is the full declarative description of one scoring domain.
type Table struct {
	Name          string
	AcceptField   string // serialized accept-flag field name, e.g. "is_subscription"
	BonusCategory string // key of the category fed by Combos, if any
	Categories    []CategoryDef
	Rules         []Rule
	Combos        []Combo
	Computed      []ComputedCategory
	Suggestions   []Suggestion
	Thresholds    Thresholds
}

// MaxPossible is the sum of all positive category ceilings. Negative
// categories never raise the attainable maximum.
func (t *Table) MaxPossible() int {
	total := 0
	for _, c := range t.Categories {
		if !c.Negative {
			total += c.Ceiling
		}
	}
	for _, c := range t.Computed {
		total += c.Ceiling
	}
	return total
}

func (t *Table) category(key string) (CategoryDef, bool) {
	for _, c := range t.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return CategoryDef{}, false
}

// validate checks internal consistency before compilation.
func (t *Table) validate() error {
	if len(t.Categories) == 0 && len(t.Computed) == 0 {
		return fmt.Errorf("table %q has no categories", t.Name)
	}
	seen := make(map[string]struct{}, len(t.Rules))
	for _, r := range t.Rules {
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("table %q: duplicate rule %q", t.Name, r.Name)
		}
		seen[r.Name] = struct{}{}
		cat, ok := t.category(r.Category)
		if !ok {
			return fmt.Errorf("table %q: rule %q references unknown category %q", t.Name, r.Name, r.Category)
		}
		if cat.Negative && r.Points >= 0 {
			return fmt.Errorf("table %q: rule %q in negative category must carry negative points", t.Name, r.Name)
		}
		if !cat.Negative && r.Points > cat.Ceiling {
			return fmt.Errorf("table %q: rule %q exceeds category ceiling %d", t.Name, r.Name, cat.Ceiling)
		}
		if r.Scope == ScopeSenderDomain && len(r.Domains) == 0 {
			return fmt.Errorf("table %q: domain rule %q has no domains", t.Name, r.Name)
		}
	}
	if t.BonusCategory != "" {
		if _, ok := t.category(t.BonusCategory); !ok {
			return fmt.Errorf("table %q: bonus category %q not declared", t.Name, t.BonusCategory)
		}
	}
	for _, c := range t.Combos {
		for _, req := range c.Requires {
			if _, ok := seen[req]; !ok {
				return fmt.Errorf("table %q: combo %q requires unknown rule %q", t.Name, c.Name, req)
			}
		}
	}
	return nil
}

// compiledRule pairs a rule with its precompiled matchers. For fuzzy
// tables the OCR digit-confusion variants are compiled up front so the
// per-document hot path never touches the regexp compiler.
type compiledRule struct {
	rule     Rule
	patterns []*regexp.Regexp
}

func compileRules(t *Table, fuzzy bool) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(t.Rules))
	for _, r := range t.Rules {
		cr := compiledRule{rule: r}
		switch r.Scope {
		case ScopeSenderDomain, ScopeHTMLLiteral:
			// no regex; matched by set membership / literal substring
		case ScopeRaw:
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", r.Name, err)
			}
			cr.patterns = []*regexp.Regexp{re}
		default:
			sources := []string{r.Pattern}
			if fuzzy && r.Scope == ScopeText {
				sources = append(sources, ocrVariants(r.Pattern)...)
			}
			for _, src := range sources {
				re, err := regexp.Compile("(?i)" + src)
				if err != nil {
					return nil, fmt.Errorf("rule %q: %w", r.Name, err)
				}
				cr.patterns = append(cr.patterns, re)
			}
		}
		out = append(out, cr)
	}
	return out, nil
}
