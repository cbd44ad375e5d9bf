package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ocr  bool
		want string
	}{
		{"collapses whitespace", "a\n\n b\t\tc", false, "a b c"},
		{"plain text untouched", "invoice total", false, "invoice total"},
		{"bang misread as i", "pr!ce conf!rmed", true, "price confirmed"},
		{"rn misread as m", "rnonthly payrnent", true, "monthly payment"},
		{"pipe misread as I", "|nvoice", true, "Invoice"},
		{"no ocr substitutions when disabled", "pr!ce", false, "pr!ce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in, tt.ocr))
		})
	}
}

func TestOCRVariants(t *testing.T) {
	variants := ocrVariants("plan 1")
	assert.Contains(t, variants, "plan l")
	assert.Contains(t, variants, "plan I")
	assert.Contains(t, variants, "plan i")

	assert.Empty(t, ocrVariants("no digits here"))
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "predplatne", FoldAccents("předplatné"))
	assert.Equal(t, "clenstvi", FoldAccents("členství"))
	assert.Equal(t, "rocni uctenka", FoldAccents("roční účtenka"))
	assert.Equal(t, "plain ascii", FoldAccents("plain ascii"))
}
