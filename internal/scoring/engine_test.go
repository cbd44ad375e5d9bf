package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSubscriptionEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(SubscriptionTable(), false, zap.NewNop())
	require.NoError(t, err)
	return eng
}

func newDocumentEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(DocumentTable(), true, zap.NewNop())
	require.NoError(t, err)
	return eng
}

func TestScoreStrongSubscription(t *testing.T) {
	eng := newSubscriptionEngine(t)

	score := eng.Score(Input{
		Subject: "Your Netflix subscription renewal payment confirmed",
		Sender:  "billing@netflix.com",
		Body: "Your subscription renewal has been processed. Payment confirmed.\n" +
			"Charged to card ending 4242.\n" +
			"<table><tr><td>Total: $15.99 monthly</td></tr></table>\n" +
			"Billing date: next charge on 12/01/2026. Renews on 01/12/2026.\n" +
			"Receipt attached.",
		HTML: true,
	})

	assert.Equal(t, VeryHigh, score.Level)
	assert.True(t, score.Accepted())
	assert.Empty(t, score.Warnings)

	b := score.Breakdown
	assert.Equal(t, 50, b.Category(CatSubscription))
	assert.Equal(t, 40, b.Category(CatPayment))
	assert.Equal(t, 35, b.Category(CatTemporal))
	assert.Equal(t, 25, b.Category(CatSenderTrust))
	assert.Equal(t, 15, b.Category(CatStructure))
	assert.Equal(t, 15, b.Category(CatFormat))
	// perfect combo plus the stacking trusted-service bonus, clamped
	// at the bonus ceiling
	assert.Equal(t, 20, b.Category(CatBonus))
	assert.Equal(t, 0, b.Category(CatPenalties))
	assert.Equal(t, 200, b.Total())
	assert.Equal(t, 205, b.MaxPossible())

	assert.Contains(t, score.MatchedPatterns, "subscription_keyword")
	assert.Contains(t, score.MatchedPatterns, "known_service_domain")
	assert.Contains(t, score.MatchedPatterns, "perfect_subscription_combo")
}

func TestScoreNewsletterPenaltiesFloor(t *testing.T) {
	eng := newSubscriptionEngine(t)

	score := eng.Score(Input{
		Subject: "HUGE WEEKEND OFFERS!!! Don't miss out",
		Sender:  "news@shopping.example.com",
		Body: "Our newsletter brings you a special offer: big discount on everything.\n" +
			"Promo codes inside. Unsubscribe at any time.",
	})

	assert.Equal(t, Low, score.Level)
	assert.False(t, score.Accepted())
	assert.NotEmpty(t, score.Warnings)

	// five independent penalties sum past the ceiling and floor there
	assert.Equal(t, -50, score.Breakdown.Category(CatPenalties))
	assert.Equal(t, float64(0), score.Breakdown.Percentage())
	assert.Contains(t, score.Suggestions, "Multiple negative indicators - likely marketing/newsletter")
}

func TestScoreModerateSubscription(t *testing.T) {
	eng := newSubscriptionEngine(t)

	score := eng.Score(Input{
		Subject: "Subscription invoice",
		Body:    "Your free trial converts soon. Total: $9.99",
	})

	assert.Equal(t, Medium, score.Level)
	assert.False(t, score.Accepted())
	assert.Equal(t, 0, score.Breakdown.Category(CatBonus))
	assert.Contains(t, score.Suggestions, "Unknown sender - verify sender domain")
}

func TestScoreEmptyInput(t *testing.T) {
	eng := newSubscriptionEngine(t)

	score := eng.Score(Input{})

	assert.Equal(t, Low, score.Level)
	assert.Zero(t, score.Breakdown.Total())
	assert.Empty(t, score.MatchedPatterns)
}

func TestScoreDeterministic(t *testing.T) {
	eng := newSubscriptionEngine(t)
	in := Input{
		Subject: "Spotify Premium renewal",
		Sender:  "noreply@spotify.com",
		Body:    "Your membership renews on 01/02/2026 for $10.99 monthly.",
	}

	first := eng.Score(in)
	second := eng.Score(in)

	assert.Equal(t, first.Breakdown.Total(), second.Breakdown.Total())
	assert.Equal(t, first.Level, second.Level)
	assert.Equal(t, first.MatchedPatterns, second.MatchedPatterns)
}

func TestScorePercentageBounds(t *testing.T) {
	eng := newSubscriptionEngine(t)

	inputs := []Input{
		{},
		{Subject: "sale sale sale", Body: "unsubscribe newsletter promo discount"},
		{Subject: "subscription renewal", Sender: "billing@github.com",
			Body: "Payment confirmed. Total: $4.00 monthly, card ending 1111. Receipt 12/12/2025."},
	}
	for _, in := range inputs {
		pct := eng.Score(in).Breakdown.Percentage()
		assert.GreaterOrEqual(t, pct, float64(0))
		assert.LessOrEqual(t, pct, float64(100))
	}
}

func TestScoreCzechInvoiceDocument(t *testing.T) {
	eng := newDocumentEngine(t)

	score := eng.Score(Input{
		Body: "FAKTURA - daňový doklad\n" +
			"IČO: 12345678\n" +
			"Datum vystavení: 12. 3. 2024\n" +
			"Variabilní symbol: 20240312\n" +
			"Tímto potvrzujeme přijetí platby.\n" +
			"Celkem k úhradě: 1500,00 Kč\n" +
			"Podpis: Jan Novák",
	})

	assert.Equal(t, VeryHigh, score.Level)
	assert.True(t, score.Accepted())

	b := score.Breakdown
	assert.Equal(t, 60, b.Category(CatTypeIndicators))
	assert.Equal(t, 50, b.Category(CatDocStructure))
	assert.Equal(t, 20, b.Category(CatLanguage))
	assert.Equal(t, 10, b.Category(CatMetadata))
	assert.Equal(t, 30, b.Category(CatOCRQuality))
	assert.Equal(t, 200, b.MaxPossible())
	assert.Contains(t, score.MatchedPatterns, "high_legibility")
}

func TestScoreDocumentLowLegibility(t *testing.T) {
	eng := newDocumentEngine(t)

	score := eng.Score(Input{
		Body: "\x7f\x7f\x7f\x7f\x7f\x7f\x7f\x7f\x7f\x7f ok \x7f\x7f\x7f\x7f\x7f\x7f\x7f\x7f\x7f\x7f",
	})

	assert.Equal(t, 5, score.Breakdown.Category(CatOCRQuality))
	assert.Contains(t, score.MatchedPatterns, "low_legibility")
	assert.Contains(t, score.Suggestions, "Low OCR legibility - consider rescanning at higher resolution")
}

func TestScoreDocumentMarketingPenalty(t *testing.T) {
	eng := newDocumentEngine(t)

	score := eng.Score(Input{
		Body: "Faktura? Spíš akce! Obrovská sleva, buy now!",
	})

	assert.Negative(t, score.Breakdown.Category(CatDocPenalties))
	assert.NotEmpty(t, score.Warnings)
}

func TestTableValidation(t *testing.T) {
	logger := zap.NewNop()

	t.Run("duplicate rule name", func(t *testing.T) {
		table := &Table{
			Name:       "broken",
			Categories: []CategoryDef{{Key: "a", Ceiling: 10, Mode: BestMatch}},
			Rules: []Rule{
				{Name: "dup", Category: "a", Points: 5, Pattern: "x"},
				{Name: "dup", Category: "a", Points: 5, Pattern: "y"},
			},
		}
		_, err := NewEngine(table, false, logger)
		assert.Error(t, err)
	})

	t.Run("rule exceeds ceiling", func(t *testing.T) {
		table := &Table{
			Name:       "broken",
			Categories: []CategoryDef{{Key: "a", Ceiling: 10, Mode: BestMatch}},
			Rules:      []Rule{{Name: "big", Category: "a", Points: 20, Pattern: "x"}},
		}
		_, err := NewEngine(table, false, logger)
		assert.Error(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		table := &Table{
			Name:       "broken",
			Categories: []CategoryDef{{Key: "a", Ceiling: 10, Mode: BestMatch}},
			Rules:      []Rule{{Name: "orphan", Category: "missing", Points: 5, Pattern: "x"}},
		}
		_, err := NewEngine(table, false, logger)
		assert.Error(t, err)
	})

	t.Run("shipped tables compile", func(t *testing.T) {
		_, err := NewEngine(SubscriptionTable(), false, logger)
		assert.NoError(t, err)
		_, err = NewEngine(DocumentTable(), true, logger)
		assert.NoError(t, err)
	})
}

func TestScoreToMap(t *testing.T) {
	eng := newSubscriptionEngine(t)

	score := eng.Score(Input{
		Subject: "Subscription renewal",
		Sender:  "billing@github.com",
		Body:    "Payment confirmed: $4.00 monthly.",
	})

	m := score.ToMap()
	assert.Equal(t, score.Breakdown.Total(), m["total_score"])
	assert.Equal(t, 205, m["max_possible"])
	assert.Equal(t, score.Level.String(), m["confidence_level"])
	assert.Contains(t, m, "is_subscription")

	breakdown, ok := m["score_breakdown"].(map[string]int)
	require.True(t, ok)
	assert.Len(t, breakdown, 8)
}
