package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "hello", tp.TruncateText("hello", 100))
	})

	t.Run("zero limit means unlimited", func(t *testing.T) {
		long := strings.Repeat("x", 10000)
		assert.Equal(t, long, tp.TruncateText(long, 0))
	})

	t.Run("truncates with marker", func(t *testing.T) {
		out := tp.TruncateText(strings.Repeat("x", 100), 10)
		assert.True(t, strings.HasPrefix(out, "xxxxxxxxxx"))
		assert.Contains(t, out, "Content truncated")
	})

	t.Run("never splits a rune", func(t *testing.T) {
		// each 'ř' is two bytes; cutting at an odd offset must back off
		out := tp.TruncateText(strings.Repeat("ř", 50), 9)
		assert.True(t, utf8.ValidString(out))
	})
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "valid čeština", tp.SanitizeUTF8("valid čeština"))

	out := tp.SanitizeUTF8("bad\xff\xfebytes")
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "badbytes", out)
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	out := tp.ProcessText("ok\xff"+strings.Repeat("y", 100), 20)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), 20+len("\n[... Content truncated due to size limits ...]"))
}
