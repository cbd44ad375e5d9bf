package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaults(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, "ollama", cfg.GetString("oracle.provider"))
	assert.Equal(t, "review", cfg.GetString("oracle.mode"))
	assert.Equal(t, "postfix", cfg.GetString("server.filter_type"))
	assert.Equal(t, "memory", cfg.GetString("store.type"))
	assert.True(t, cfg.GetBool("legal.enabled"))
	assert.True(t, cfg.GetBool("scoring.prefilter_enabled"))
	assert.Equal(t, 0.90, cfg.GetFloat64("scoring.email_thresholds.very_high"))
	assert.Equal(t, 0.40, cfg.GetFloat64("scoring.document_thresholds.medium"))
}

func TestGetOracle(t *testing.T) {
	oc := defaultConfig().GetOracle()

	assert.Equal(t, "ollama", oc.Provider)
	assert.Equal(t, 120*time.Second, oc.Timeout)
	assert.Equal(t, 3, oc.MaxAttempts)
	assert.Equal(t, time.Second, oc.InitialDelay)
	assert.Equal(t, 2.0, oc.BackoffMultiplier)
	assert.Equal(t, 30*time.Second, oc.MaxDelay)
	assert.False(t, oc.BreakerEnabled)
}

func TestGetWorkers(t *testing.T) {
	wc := defaultConfig().GetWorkers()

	assert.Equal(t, 12, wc.Initial)
	assert.Equal(t, 2, wc.Min)
	assert.Equal(t, 16, wc.Max)
	assert.Equal(t, 256, wc.QueueSize)
	assert.Equal(t, 30*time.Second, wc.AdjustInterval)
}

func TestGetOllama(t *testing.T) {
	oc := defaultConfig().GetOllama()

	assert.Equal(t, "http://localhost:11434", oc.BaseURL)
	assert.Equal(t, "llama3", oc.ModelName)
	assert.Equal(t, 1000, oc.NumPredict)
	assert.Equal(t, 4096, oc.MaxBodySize)
}

func TestGetDuration(t *testing.T) {
	cfg := defaultConfig()

	d, err := cfg.GetDuration("oracle.timeout")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)

	cfg.GetViper().Set("oracle.timeout", "not a duration")
	_, err = cfg.GetDuration("oracle.timeout")
	assert.Error(t, err)
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("oracle.provider", "bedrock")
	v.Set("oracle.mode", "always")
	cfg := NewFromViper(v)

	oc := cfg.GetOracle()
	assert.Equal(t, "bedrock", oc.Provider)
	assert.Equal(t, "always", oc.Mode)
	// untouched keys keep their defaults
	assert.Equal(t, 3, oc.MaxAttempts)
}
