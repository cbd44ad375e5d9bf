package scoring

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ocrConfusions maps digits to the characters OCR commonly misreads
// them as. Used to generate pattern variants for fuzzy search.
var ocrConfusions = map[string][]string{
	"0": {"O", "o"},
	"1": {"l", "I", "i"},
	"5": {"S", "s"},
	"8": {"B"},
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize applies the deterministic OCR-tolerant cleanup pass:
// whitespace collapse, then the common character confusions. It is a
// pure, total function; ocr enables the substitutions that only make
// sense for scanned input ('!' is a frequent misread of 'i').
func Normalize(text string, ocr bool) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	if ocr {
		text = strings.ReplaceAll(text, "rn", "m")
		text = strings.ReplaceAll(text, "|", "I")
		text = strings.ReplaceAll(text, "!", "i")
	}
	return text
}

// ocrVariants returns every variant of pattern with one digit replaced
// by one of its OCR look-alikes. The variant count is bounded by
// pattern length times the confusion table size.
func ocrVariants(pattern string) []string {
	var variants []string
	for digit, repls := range ocrConfusions {
		if !strings.Contains(pattern, digit) {
			continue
		}
		for _, repl := range repls {
			variants = append(variants, strings.ReplaceAll(pattern, digit, repl))
		}
	}
	return variants
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents maps Latin-diacritic characters to their unaccented base
// letters (á→a, č→c, ř→r, …). Applied before keyword containment checks
// so Czech/German text matches ASCII keyword lists.
func FoldAccents(text string) string {
	folded, _, err := transform.String(accentFolder, text)
	if err != nil {
		return text
	}
	return folded
}

// matchAny reports whether any of the precompiled pattern variants
// matches the given text. The first variant is always the exact
// pattern; OCR variants follow.
func matchAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
