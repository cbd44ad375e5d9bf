package scoring

// Category keys for the subscription-email domain. These double as the
// stable field names in the serialized score breakdown.
const (
	CatSubscription = "subscription_indicators"
	CatPayment      = "payment_indicators"
	CatTemporal     = "temporal_indicators"
	CatSenderTrust  = "sender_trust"
	CatStructure    = "content_structure"
	CatFormat       = "format_quality"
	CatBonus        = "bonus_combinations"
	CatPenalties    = "negative_penalties"
)

// knownServices are sender domains of services that commonly bill
// subscriptions. Membership grants the top sender-trust tier.
var knownServices = []string{
	"github.com", "netflix.com", "spotify.com", "adobe.com",
	"microsoft.com", "google.com", "apple.com", "dropbox.com",
	"slack.com", "zoom.us", "notion.so", "figma.com",
	"canva.com", "grammarly.com", "evernote.com",
	"stripe.com", "paypal.com", "braintree.com",
}

// SubscriptionTable is the scoring domain for subscription-notice
// detection in email: 200 attainable points across seven positive
// categories, with marketing/newsletter signals as summed penalties.
func SubscriptionTable() *Table {
	return &Table{
		Name:          "subscription",
		AcceptField:   "is_subscription",
		BonusCategory: CatBonus,
		Thresholds:    DefaultThresholds(),
		Categories: []CategoryDef{
			{Key: CatSubscription, Ceiling: 50, Mode: BestMatch},
			{Key: CatPayment, Ceiling: 40, Mode: BestMatch},
			{Key: CatTemporal, Ceiling: 35, Mode: BestMatch},
			{Key: CatSenderTrust, Ceiling: 25, Mode: BestMatch},
			{Key: CatStructure, Ceiling: 20, Mode: BestMatch},
			{Key: CatFormat, Ceiling: 15, Mode: BestMatch},
			{Key: CatBonus, Ceiling: 20, Mode: Additive},
			{Key: CatPenalties, Ceiling: 50, Mode: Additive, Negative: true},
		},
		Rules: []Rule{
			// Subscription indicators
			{Name: "subscription_keyword", Category: CatSubscription, Points: 50,
				Pattern: `(subscription|předplatné|abonnement|členství)`},
			{Name: "renewal_keyword", Category: CatSubscription, Points: 45,
				Pattern: `(renewal|renew|obnovení|renewed|obnoví)`},
			{Name: "payment_confirmed", Category: CatSubscription, Points: 40,
				Pattern: `(payment\s+confirmed|platba\s+potvrzena|charge\s+successful|successfully\s+charged)`},
			{Name: "invoice_keyword", Category: CatSubscription, Points: 35,
				Pattern: `(invoice|faktura|rechnung|bill|účtenka)`},
			{Name: "membership_keyword", Category: CatSubscription, Points: 30,
				Pattern: `(membership|členství|member|premium)`},

			// Payment indicators
			{Name: "price_with_currency", Category: CatPayment, Points: 40,
				Pattern: `([$€£¥]\s?\d{1,3}([,\.]\d{3})*([,\.]\d{2})?|\d{1,3}([,\.\s]\d{3})*[,\.]\d{2}\s*(USD|EUR|CZK|Kč|€|\$))`},
			{Name: "payment_method", Category: CatPayment, Points: 35,
				Pattern: `(charged\s+to|payment\s+method|card\s+ending|paypal|stripe|credit\s+card)`},
			{Name: "billing_date", Category: CatPayment, Points: 30,
				Pattern: `(billing\s+date|next\s+charge|next\s+payment|charge\s+on)`},
			{Name: "amount_total", Category: CatPayment, Points: 25,
				Pattern: `(total|amount|celkem|suma):\s*[$€£¥]?\d+`},

			// Temporal indicators
			{Name: "monthly_yearly", Category: CatTemporal, Points: 35,
				Pattern: `(monthly|yearly|měsíčně|ročně|per\s+month|per\s+year|/month|/year)`},
			{Name: "renewal_date", Category: CatTemporal, Points: 30,
				Pattern: `(renews\s+on|expires|ends\s+on|platnost\s+do|expiry\s+date)`},
			{Name: "trial_period", Category: CatTemporal, Points: 25,
				Pattern: `(trial\s+ends|trial\s+period|zkušební\s+doba|free\s+trial)`},
			{Name: "billing_cycle", Category: CatTemporal, Points: 20,
				Pattern: `(billing\s+cycle|payment\s+cycle|cyklus\s+platby)`},

			// Sender trust: explicit tiered domain checks, not free-text
			// search. Best match wins across the three tiers.
			{Name: "known_service_domain", Category: CatSenderTrust, Points: 25,
				Scope: ScopeSenderDomain, Domains: knownServices},
			{Name: "payment_processor", Category: CatSenderTrust, Points: 20,
				Scope: ScopeSenderRegex, Pattern: `@(stripe\.com|paypal\.com|braintree\.com|square\.com)`},
			{Name: "noreply_billing", Category: CatSenderTrust, Points: 15,
				Scope: ScopeSenderRegex, Pattern: `(noreply|billing|subscriptions|payments)@`},

			// Content structure
			{Name: "html_table", Category: CatStructure, Points: 15,
				Scope: ScopeHTMLLiteral, Pattern: `<table`},
			{Name: "receipt_structure", Category: CatStructure, Points: 15,
				Pattern: `(receipt|kvitance|potvrzení)`},

			// Format quality
			{Name: "date_format", Category: CatFormat, Points: 15,
				Pattern: `\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`},
			{Name: "currency_symbol", Category: CatFormat, Points: 10,
				Pattern: `[$€£¥]|Kč`},

			// Negative penalties: each distinct signal is independent
			// corroborating evidence, so they sum rather than max.
			{Name: "unsubscribe_link", Category: CatPenalties, Points: -30,
				Pattern:     `(unsubscribe|opt-out|odhlásit|abbestellen)`,
				Description: "Contains 'unsubscribe' link"},
			{Name: "newsletter_keyword", Category: CatPenalties, Points: -25,
				Pattern:     `(newsletter|bulletin|zpravodaj)`,
				Description: "Newsletter keyword detected"},
			{Name: "marketing_keyword", Category: CatPenalties, Points: -20,
				Pattern:     `(sale|discount|limited\s+offer|akce|sleva|výprodej)`,
				Description: "Marketing keywords detected"},
			{Name: "promotional", Category: CatPenalties, Points: -15,
				Pattern:     `(promo|deal|special\s+offer|save\s+\d+%)`,
				Description: "Promotional content detected"},
			// Shout patterns are checked against the raw text,
			// case-sensitively: normalization rewrites '!' and
			// case-folding would make any long word count as caps.
			{Name: "spam_indicators", Category: CatPenalties, Points: -40,
				Scope: ScopeRaw, Pattern: `([!]{3,}|[A-Z]{10,})`,
				Description: "Spam indicators detected"},
		},
		Combos: []Combo{
			{Name: "perfect_subscription_combo", Points: 20, Exclusive: true,
				Requires: []string{"subscription_keyword", "price_with_currency", "monthly_yearly"}},
			{Name: "perfect_payment_combo", Points: 15, Exclusive: true,
				Requires: []string{"payment_confirmed", "amount_total", "payment_method"}},
			{Name: "perfect_renewal_combo", Points: 15, Exclusive: true,
				Requires: []string{"renewal_keyword", "renewal_date", "price_with_currency"}},
			// Stacks with any perfect combo: corroboration from an
			// independent axis (sender identity), not repeated evidence.
			{Name: "trusted_service_payment", Points: 10,
				Requires: []string{"known_service_domain", "payment_confirmed"}},
		},
		Suggestions: []Suggestion{
			{Text: "No subscription keywords found - check if this is really a subscription",
				When: func(b *Breakdown) bool { return b.Category(CatSubscription) == 0 }},
			{Text: "Missing payment information (amount, currency, method)",
				When: func(b *Breakdown) bool { return b.Category(CatPayment) < 20 }},
			{Text: "Unknown sender - verify sender domain",
				When: func(b *Breakdown) bool { return b.Category(CatSenderTrust) == 0 }},
			{Text: "Multiple negative indicators - likely marketing/newsletter",
				When: func(b *Breakdown) bool { return b.Category(CatPenalties) < -30 }},
		},
	}
}
