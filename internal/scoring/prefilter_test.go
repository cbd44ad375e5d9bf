package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefilterDefaults(t *testing.T) {
	p := NewPrefilter(nil)

	assert.True(t, p.Matches("Your subscription is renewing", ""))
	assert.True(t, p.Matches("", "Please find the invoice attached."))
	assert.False(t, p.Matches("Lunch on Friday?", "See you at noon."))
}

func TestPrefilterFoldsAccents(t *testing.T) {
	p := NewPrefilter(nil)

	// Czech text with diacritics matches the accent-free keyword list
	assert.True(t, p.Matches("Vaše předplatné bylo obnoveno", ""))
	assert.True(t, p.Matches("", "Platba za členství proběhla v pořádku."))
}

func TestPrefilterBodyBudget(t *testing.T) {
	p := NewPrefilter(nil)

	// keyword buried past the scan budget is not seen
	body := strings.Repeat("x", prefilterBodyBudget) + " subscription"
	assert.False(t, p.Matches("", body))

	// but within budget it is
	assert.True(t, p.Matches("", "subscription "+strings.Repeat("x", prefilterBodyBudget)))
}

func TestPrefilterCustomKeywords(t *testing.T) {
	p := NewPrefilter([]string{"vyúčtování"})

	assert.True(t, p.Matches("Roční vyúčtování energie", ""))
	assert.False(t, p.Matches("Your subscription is renewing", ""))
}
