package legal

import (
	"regexp"
	"strings"

	"github.com/maj/doc-classifier/internal/core"
	"go.uber.org/zap"
)

// Document type names for legal findings.
const (
	TypePoliceLegal   = "police_legal"
	TypePoliceAdmin   = "police_admin"
	TypeCourtDocument = "court_document"
	TypeProsecutor    = "prosecutor_doc"
	TypeGermanPolice  = "german_police"
	TypeGermanCourt   = "german_court"
	TypeUnknown       = "unknown"
)

// featureSet is one named group of alternative patterns; the feature
// fires when any pattern matches.
type featureSet struct {
	name     string
	patterns []*regexp.Regexp
}

func compileFeature(name string, patterns ...string) featureSet {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile("(?i)" + p)
	}
	return featureSet{name: name, patterns: compiled}
}

// Identifier recognizes Czech and German police, court and prosecutor
// documents and derives tags and metadata for downstream archival.
type Identifier struct {
	features []featureSet

	caseNumberRes []*regexp.Regexp
	courtNameRe   *regexp.Regexp
	germanCourtRe *regexp.Regexp
	prosecutorRe  *regexp.Regexp
	policeDeptRe  *regexp.Regexp
	subtypes      []subtype
	logger        *zap.Logger
}

// subtype pairs a detection pattern with the human-readable name
// recorded in metadata.
type subtype struct {
	re   *regexp.Regexp
	name string
}

// NewIdentifier compiles the recognition patterns.
func NewIdentifier(logger *zap.Logger) *Identifier {
	return &Identifier{
		features: []featureSet{
			compileFeature("czech_police_headers", `POLICIE\s+ČESKÉ\s+REPUBLIKY`, `Krajské\s+ředitelství\s+policie`),
			compileFeature("court_headers", `OBVODNÍ\s+SOUD`, `KRAJSKÝ\s+SOUD`, `VRCHNÍ\s+SOUD`, `MĚSTSKÝ\s+SOUD`, `ÚSTAVNÍ\s+SOUD`),
			compileFeature("prosecutor_headers", `STÁTNÍ\s+ZASTUPITELSTVÍ`, `MĚSTSKÉ\s+STÁTNÍ`, `KRAJSKÉ\s+STÁTNÍ`),
			compileFeature("legal_refs", `§\s*\d+\s*odstavec?\s*\d+`, `trestního\s+řádu`),
			compileFeature("case_numbers", `\d+[A-Z]+\s*\d+/\d{4}`, `\d+\s+[A-Z]+\s+\d+/\d{4}`, `KRPA-\d+-\d+/[A-Z]+-\d+-\d+`),
			compileFeature("court_types", `PŘEDVOLÁNÍ`, `ROZSUDEK`, `USNESENÍ`, `ODVOLÁNÍ`),
			compileFeature("prosecutor_types", `KZV`, `TZ`, `vyrozumění`, `návrh\s+na\s+zastavení`),
			compileFeature("signatures", `JUDr\.`, `samosoudce`, `státní\s+zástupce`),
			compileFeature("german_court", `Amtsgericht`, `Landgericht`, `Oberlandesgericht`),
			compileFeature("german_police", `Polizei`, `Bundespolizei`),
		},
		caseNumberRes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:sp\.\s*zn\.|spisová\s+značka)\s*:?\s*(\d+\s*[A-Z]+\s*\d+/\d{4})`),
			regexp.MustCompile(`(KRPA-\d+-\d+/[A-Z]+-\d+-\d+)`),
			regexp.MustCompile(`(\d+\s+[A-Z]+\s+\d+/\d{4})`),
		},
		courtNameRe:   regexp.MustCompile(`(?i)((?:OBVODNÍ|KRAJSKÝ|VRCHNÍ|MĚSTSKÝ|ÚSTAVNÍ)\s+SOUD[^\n]*)`),
		germanCourtRe: regexp.MustCompile(`(?i)((?:Amtsgericht|Landgericht|Oberlandesgericht)[^\n]*)`),
		prosecutorRe:  regexp.MustCompile(`(?i)((?:STÁTNÍ|MĚSTSKÉ|KRAJSKÉ)\s+ZASTUPITELSTVÍ[^\n]*)`),
		policeDeptRe:  regexp.MustCompile(`(?i)(Krajské\s+ředitelství\s+policie[^\n]*)`),
		subtypes: []subtype{
			{regexp.MustCompile(`(?i)PŘEDVOLÁNÍ`), "Předvolání"},
			{regexp.MustCompile(`(?i)ROZSUDEK`), "Rozsudek"},
			{regexp.MustCompile(`(?i)USNESENÍ`), "Usnesení"},
			{regexp.MustCompile(`(?i)ODVOLÁNÍ`), "Odvolání"},
			{regexp.MustCompile(`KZV`), "Konečné zastavení věci"},
			{regexp.MustCompile(`TZ`), "Trestní zákon"},
		},
		logger: logger,
	}
}

// extractFeatures reports which named feature groups fire on the text.
func (i *Identifier) extractFeatures(text string) map[string]bool {
	features := make(map[string]bool, len(i.features))
	for _, f := range i.features {
		fired := false
		for _, p := range f.patterns {
			if p.MatchString(text) {
				fired = true
				break
			}
		}
		features[f.name] = fired
	}
	return features
}

// Identify classifies the text. It returns nil when the text shows no
// legal markers at all; otherwise the finding carries the type, a
// confidence percentage, archival tags and extracted metadata.
func (i *Identifier) Identify(text string) *core.LegalFinding {
	f := i.extractFeatures(text)

	// Supporting evidence beyond the bare header keyword.
	supporting := 0
	for _, key := range []string{"case_numbers", "legal_refs", "signatures"} {
		if f[key] {
			supporting++
		}
	}

	docType, confidence := classify(f, supporting)
	if docType == "" {
		return nil
	}

	country := "CZ"
	switch docType {
	case TypeGermanCourt, TypeGermanPolice:
		country = "DE"
	case TypeUnknown:
		country = "UNKNOWN"
	}

	metadata := i.extractMetadata(text, docType)
	finding := &core.LegalFinding{
		DocumentType: docType,
		Confidence:   confidence,
		Tags:         tagsFor(docType, country, metadata),
		Metadata:     metadata,
		IsLegal:      docType != TypeUnknown,
	}

	if i.logger != nil {
		i.logger.Debug("Legal document identified",
			zap.String("type", docType),
			zap.Int("confidence", confidence),
			zap.String("country", country))
	}

	return finding
}

// classify maps extracted features to a document type. Confidence is a
// percentage: a header plus supporting evidence reads 90, a bare
// header 50-70 depending on the source.
func classify(f map[string]bool, supporting int) (string, int) {
	if f["german_court"] {
		if supporting >= 1 {
			return TypeGermanCourt, 90
		}
		return TypeGermanCourt, 50
	}
	if f["german_police"] {
		if supporting >= 1 {
			return TypeGermanPolice, 90
		}
		return TypeGermanPolice, 50
	}
	if f["court_headers"] {
		if supporting >= 1 || f["court_types"] {
			return TypeCourtDocument, 90
		}
		return TypeCourtDocument, 60
	}
	if f["prosecutor_headers"] {
		if supporting >= 1 || f["prosecutor_types"] {
			return TypeProsecutor, 90
		}
		return TypeProsecutor, 60
	}
	if f["czech_police_headers"] && (f["legal_refs"] || f["case_numbers"]) {
		return TypePoliceLegal, 90
	}
	if f["czech_police_headers"] {
		return TypePoliceAdmin, 70
	}

	for _, fired := range f {
		if fired {
			return TypeUnknown, 50
		}
	}
	return "", 0
}

// extractMetadata pulls the case number, issuing institution and
// document subtype out of the text.
func (i *Identifier) extractMetadata(text, docType string) map[string]string {
	metadata := make(map[string]string)

	for _, re := range i.caseNumberRes {
		if m := re.FindStringSubmatch(text); m != nil {
			metadata["case_number"] = strings.TrimSpace(m[1])
			break
		}
	}

	switch docType {
	case TypeCourtDocument:
		if m := i.courtNameRe.FindStringSubmatch(text); m != nil {
			metadata["court_name"] = strings.TrimSpace(m[1])
		}
	case TypeGermanCourt:
		if m := i.germanCourtRe.FindStringSubmatch(text); m != nil {
			metadata["court_name"] = strings.TrimSpace(m[1])
		}
	case TypeProsecutor:
		if m := i.prosecutorRe.FindStringSubmatch(text); m != nil {
			metadata["prosecutor_name"] = strings.TrimSpace(m[1])
		}
	case TypePoliceLegal, TypePoliceAdmin:
		if m := i.policeDeptRe.FindStringSubmatch(text); m != nil {
			metadata["police_department"] = strings.TrimSpace(m[1])
		}
	}

	for _, st := range i.subtypes {
		if st.re.MatchString(text) {
			metadata["document_subtype"] = st.name
			break
		}
	}

	return metadata
}

// tagsFor derives archival tags from the document type and metadata.
func tagsFor(docType, country string, metadata map[string]string) []string {
	var tags []string

	switch docType {
	case TypePoliceLegal:
		tags = append(tags, "policejní-protokol", "právní", "KRPA")
	case TypePoliceAdmin:
		tags = append(tags, "policejní-protokol", "administrativní")
	case TypeCourtDocument:
		tags = append(tags, "soudní-spis", "právní")
		if sub := metadata["document_subtype"]; sub != "" {
			tags = append(tags, strings.ToLower(sub))
		}
		if name := strings.ToUpper(metadata["court_name"]); name != "" {
			switch {
			case strings.Contains(name, "OBVODNÍ"):
				tags = append(tags, "obvodní-soud")
			case strings.Contains(name, "KRAJSKÝ"):
				tags = append(tags, "krajský-soud")
			case strings.Contains(name, "VRCHNÍ"):
				tags = append(tags, "vrchní-soud")
			}
		}
	case TypeProsecutor:
		tags = append(tags, "státní-zastupitelství", "právní")
		if sub := metadata["document_subtype"]; sub != "" {
			tags = append(tags, strings.ReplaceAll(strings.ToLower(sub), " ", "-"))
		}
	case TypeGermanPolice:
		tags = append(tags, "policejní-protokol", "právní")
	case TypeGermanCourt:
		tags = append(tags, "soudní-spis", "právní")
	}

	tags = append(tags, strings.ToLower(country))
	return tags
}
