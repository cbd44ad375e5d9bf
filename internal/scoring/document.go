package scoring

import (
	"strings"
	"unicode"
)

// Category keys for the scanned-document typing domain.
const (
	CatTypeIndicators = "type_indicators"
	CatDocStructure   = "content_structure"
	CatLanguage       = "language_formality"
	CatOCRQuality     = "ocr_quality"
	CatMetadata       = "metadata"
	CatDocPenalties   = "marketing_penalties"
)

// DocumentTable is the scoring domain for OCR'd document typing
// (invoices, bank statements, receipts, court papers): 200 attainable
// points, with thresholds tuned lower than the subscription domain
// because scanned input is noisier.
func DocumentTable() *Table {
	return &Table{
		Name:        "document",
		AcceptField: "is_classified",
		Thresholds:  Thresholds{VeryHigh: 0.75, High: 0.60, Medium: 0.40},
		Categories: []CategoryDef{
			{Key: CatTypeIndicators, Ceiling: 60, Mode: BestMatch},
			{Key: CatDocStructure, Ceiling: 50, Mode: Additive},
			{Key: CatLanguage, Ceiling: 40, Mode: Additive},
			{Key: CatMetadata, Ceiling: 20, Mode: Additive},
			{Key: CatDocPenalties, Ceiling: 50, Mode: Additive, Negative: true},
		},
		Computed: []ComputedCategory{
			{Key: CatOCRQuality, Ceiling: 30, Fn: ocrQuality},
		},
		Rules: []Rule{
			// Type indicators
			{Name: "invoice_header", Category: CatTypeIndicators, Points: 60,
				Pattern: `(faktura|invoice|rechnung|daňový\s+doklad)`},
			{Name: "bank_statement", Category: CatTypeIndicators, Points: 55,
				Pattern: `(bankovní\s+výpis|výpis\s+z\s+účtu|bank\s+statement|kontoauszug)`},
			{Name: "court_document", Category: CatTypeIndicators, Points: 55,
				Pattern: `(rozsudek|usnesení|předvolání|soudní|amtsgericht|landgericht)`},
			{Name: "police_report", Category: CatTypeIndicators, Points: 55,
				Pattern: `(policie\s+české\s+republiky|policejní\s+protokol|polizei)`},
			{Name: "receipt_header", Category: CatTypeIndicators, Points: 50,
				Pattern: `(účtenka|receipt|paragon|pokladní\s+doklad)`},

			// Structural fields, additive: each distinct field present
			// is independent evidence of a formal document.
			{Name: "registration_number", Category: CatDocStructure, Points: 15,
				Pattern: `(ičo?|dič|vat\s+id|company\s+id)\s*:?\s*\d{6,}`},
			{Name: "issue_date", Category: CatDocStructure, Points: 10,
				Pattern: `(datum\s+vystavení|date\s+of\s+issue|issued\s+on|vystaveno)`},
			{Name: "amount_with_currency", Category: CatDocStructure, Points: 15,
				Pattern: `\d+([,\.]\d{2})?\s*(kč|czk|eur|usd|€|\$)`},
			{Name: "signature_block", Category: CatDocStructure, Points: 10,
				Pattern: `(podpis|razítko|signature|v\s+zastoupení|judr\.)`},

			// Language and formality
			{Name: "formal_language", Category: CatLanguage, Points: 20,
				Pattern: `(v\s+souladu\s+s|tímto\s+potvrzujeme|dovolujeme\s+si|pursuant\s+to|hereby)`},
			{Name: "legal_terms", Category: CatLanguage, Points: 20,
				Pattern: `(§\s*\d+|zákon[a-ž]*\s+č\.|trestního\s+řádu|sb\.)`},

			// Metadata
			{Name: "known_institution", Category: CatMetadata, Points: 10,
				Pattern: `(policie|soud|státní\s+zastupitelství|finanční\s+úřad|zdravotní\s+pojišťovna|banka)`},
			{Name: "date_stamp", Category: CatMetadata, Points: 5,
				Pattern: `\b\d{1,2}\.\s?\d{1,2}\.\s?\d{4}\b`},
			{Name: "reference_number", Category: CatMetadata, Points: 5,
				Pattern: `(č\.\s?j\.|sp\.\s?zn\.|ref(erence)?\s+no|variabilní\s+symbol)`},

			// Marketing tone disqualifies a formal-document reading
			{Name: "marketing_tone", Category: CatDocPenalties, Points: -30,
				Pattern:     `(sleva|akce|výprodej|special\s+offer|discount|buy\s+now)`,
				Description: "Marketing tone detected"},
			{Name: "informal_tone", Category: CatDocPenalties, Points: -20,
				Pattern:     `(ahoj|čau|hey\s+there|check\s+this\s+out)`,
				Description: "Informal tone detected"},
		},
		Suggestions: []Suggestion{
			{Text: "No document type indicators matched - possibly an unstructured note",
				When: func(b *Breakdown) bool { return b.Category(CatTypeIndicators) == 0 }},
			{Text: "Missing structural fields (document number, amount, date)",
				When: func(b *Breakdown) bool { return b.Category(CatDocStructure) < 15 }},
			{Text: "Low OCR legibility - consider rescanning at higher resolution",
				When: func(b *Breakdown) bool { return b.Category(CatOCRQuality) < 15 }},
			{Text: "Marketing tone present - likely promotional material, not a document",
				When: func(b *Breakdown) bool { return b.Category(CatDocPenalties) < 0 }},
		},
	}
}

// ocrQuality estimates scan legibility from the fraction of readable
// runes: >90% legible scores the full 30, 60-90% scores 15, anything
// lower scores the floor of 5. Empty input scores zero.
func ocrQuality(in Input) (int, []string) {
	text := in.Body
	if text == "" {
		return 0, nil
	}
	var readable, total int
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || strings.ContainsRune(`.,:;-/%§()€$`, r) {
			readable++
		}
	}
	ratio := float64(readable) / float64(total)
	switch {
	case ratio > 0.9:
		return 30, []string{"high_legibility"}
	case ratio > 0.6:
		return 15, []string{"medium_legibility"}
	default:
		return 5, []string{"low_legibility"}
	}
}
