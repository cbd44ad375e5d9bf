package scoring

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Input is the per-document tuple the engine evaluates. All fields are
// plain text; the engine performs its own normalization.
type Input struct {
	Subject string
	Sender  string
	Body    string
	HTML    bool
}

// CategoryScore is one category's contribution to the total.
type CategoryScore struct {
	Key   string
	Score int
}

// Breakdown is the per-category score with derived total and
// percentage. Created fresh per Score call and never mutated after.
type Breakdown struct {
	categories []CategoryScore
	byKey      map[string]int
	total      int
	maxScore   int
}

// Categories returns the per-category scores in table order.
func (b *Breakdown) Categories() []CategoryScore {
	out := make([]CategoryScore, len(b.categories))
	copy(out, b.categories)
	return out
}

// Category returns the contribution of one category by key.
func (b *Breakdown) Category(key string) int {
	return b.byKey[key]
}

// Total is the sum of all category contributions; it can be negative.
func (b *Breakdown) Total() int {
	return b.total
}

// MaxPossible is the fixed sum of positive category ceilings.
func (b *Breakdown) MaxPossible() int {
	return b.maxScore
}

// Percentage is the total over maximum-possible, clamped to [0,100].
// Negative totals floor at 0% rather than reporting a negative value.
func (b *Breakdown) Percentage() float64 {
	if b.maxScore == 0 {
		return 0
	}
	pct := float64(b.total) / float64(b.maxScore) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Score is the complete classification result for one document.
type Score struct {
	Breakdown       *Breakdown
	Level           ConfidenceLevel
	MatchedPatterns []string
	Warnings        []string
	Suggestions     []string

	table *Table
}

// Accepted reports the binary accept decision (top two tiers).
func (s *Score) Accepted() bool {
	return s.Level.Accepted()
}

// Engine evaluates documents against one compiled Table. It holds no
// mutable state after construction and is safe for concurrent use.
type Engine struct {
	table  *Table
	rules  []compiledRule
	fuzzy  bool
	logger *zap.Logger
}

// NewEngine compiles the table's patterns and returns a ready engine.
// fuzzy enables the OCR digit-confusion variants and the OCR character
// substitutions in the normalizer.
func NewEngine(table *Table, fuzzy bool, logger *zap.Logger) (*Engine, error) {
	if err := table.validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring table: %w", err)
	}
	rules, err := compileRules(table, fuzzy)
	if err != nil {
		return nil, fmt.Errorf("failed to compile scoring table %q: %w", table.Name, err)
	}
	return &Engine{
		table:  table,
		rules:  rules,
		fuzzy:  fuzzy,
		logger: logger,
	}, nil
}

// Table returns the engine's declarative table.
func (e *Engine) Table() *Table {
	return e.table
}

// Score evaluates one document. The function is deterministic and
// total: empty inputs simply match no rules and yield a LOW result.
func (e *Engine) Score(in Input) *Score {
	rawText := in.Subject + "\n" + in.Sender + "\n" + in.Body
	normText := Normalize(rawText, e.fuzzy)
	senderLower := strings.ToLower(in.Sender)
	bodyLower := strings.ToLower(in.Body)

	matched := make([]string, 0, 8)
	matchedSet := make(map[string]bool, 8)
	perCategory := make(map[string][]Rule)

	for _, cr := range e.rules {
		if e.ruleMatches(cr, normText, rawText, senderLower, bodyLower, in.HTML) {
			matched = append(matched, cr.rule.Name)
			matchedSet[cr.rule.Name] = true
			perCategory[cr.rule.Category] = append(perCategory[cr.rule.Category], cr.rule)
		}
	}

	breakdown := &Breakdown{
		byKey:    make(map[string]int, len(e.table.Categories)+len(e.table.Computed)),
		maxScore: e.table.MaxPossible(),
	}
	var warnings []string

	for _, cat := range e.table.Categories {
		score := aggregate(cat, perCategory[cat.Key])
		if cat.Key == e.table.BonusCategory && e.table.BonusCategory != "" {
			score = e.applyCombos(matchedSet, &matched, cat)
		}
		if cat.Negative {
			for _, r := range perCategory[cat.Key] {
				warnings = append(warnings, fmt.Sprintf("%s (%d penalty)", r.Description, r.Points))
			}
		}
		breakdown.categories = append(breakdown.categories, CategoryScore{Key: cat.Key, Score: score})
		breakdown.byKey[cat.Key] = score
		breakdown.total += score
	}

	for _, cc := range e.table.Computed {
		score, names := cc.Fn(in)
		if score > cc.Ceiling {
			score = cc.Ceiling
		}
		if score < 0 {
			score = 0
		}
		for _, n := range names {
			if !matchedSet[n] {
				matched = append(matched, n)
				matchedSet[n] = true
			}
		}
		breakdown.categories = append(breakdown.categories, CategoryScore{Key: cc.Key, Score: score})
		breakdown.byKey[cc.Key] = score
		breakdown.total += score
	}

	level := e.table.Thresholds.Classify(breakdown.Percentage())

	var suggestions []string
	for _, s := range e.table.Suggestions {
		if s.When(breakdown) {
			suggestions = append(suggestions, s.Text)
		}
	}

	if e.logger != nil {
		e.logger.Debug("Scored document",
			zap.String("table", e.table.Name),
			zap.Int("total", breakdown.Total()),
			zap.Float64("percentage", breakdown.Percentage()),
			zap.String("confidence", level.String()),
			zap.Int("matched", len(matched)))
	}

	return &Score{
		Breakdown:       breakdown,
		Level:           level,
		MatchedPatterns: matched,
		Warnings:        warnings,
		Suggestions:     suggestions,
		table:           e.table,
	}
}

func (e *Engine) ruleMatches(cr compiledRule, normText, rawText, senderLower, bodyLower string, html bool) bool {
	switch cr.rule.Scope {
	case ScopeSenderDomain:
		for _, domain := range cr.rule.Domains {
			if strings.Contains(senderLower, domain) {
				return true
			}
		}
		return false
	case ScopeSenderRegex:
		return matchAny(cr.patterns, senderLower)
	case ScopeHTMLLiteral:
		return html && strings.Contains(bodyLower, cr.rule.Pattern)
	case ScopeRaw:
		return matchAny(cr.patterns, rawText)
	default:
		return matchAny(cr.patterns, normText)
	}
}

// aggregate computes one category's contribution from its matched
// rules: best single match for BestMatch categories, clamped sum for
// Additive ones. Negative categories floor at minus their ceiling.
func aggregate(cat CategoryDef, rules []Rule) int {
	score := 0
	for _, r := range rules {
		switch cat.Mode {
		case Additive:
			score += r.Points
		default:
			if cat.Negative {
				if r.Points < score {
					score = r.Points
				}
			} else if r.Points > score {
				score = r.Points
			}
		}
	}
	if cat.Negative {
		if score < -cat.Ceiling {
			score = -cat.Ceiling
		}
		return score
	}
	if score > cat.Ceiling {
		score = cat.Ceiling
	}
	return score
}

// applyCombos evaluates combination bonuses: exclusive combos in
// declaration order with only the first satisfied one contributing,
// plus every satisfied non-exclusive combo stacking on top.
func (e *Engine) applyCombos(matchedSet map[string]bool, matched *[]string, cat CategoryDef) int {
	bonus := 0
	exclusiveTaken := false
	for _, combo := range e.table.Combos {
		if combo.Exclusive && exclusiveTaken {
			continue
		}
		satisfied := true
		for _, req := range combo.Requires {
			if !matchedSet[req] {
				satisfied = false
				break
			}
		}
		if !satisfied {
			continue
		}
		bonus += combo.Points
		*matched = append(*matched, combo.Name)
		matchedSet[combo.Name] = true
		if combo.Exclusive {
			exclusiveTaken = true
		}
	}
	if bonus > cat.Ceiling {
		bonus = cat.Ceiling
	}
	return bonus
}
