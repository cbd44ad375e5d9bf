package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/factory"
	"github.com/maj/doc-classifier/internal/ports"
)

func cliFlags() *CLIFlags {
	return &CLIFlags{
		Provider:        "ollama",
		OracleMode:      "off",
		MaxTokens:       1000,
		Temperature:     0.1,
		TopP:            0.9,
		MaxBodySize:     4096,
		OllamaBaseURL:   "http://localhost:11434",
		OllamaModelName: "llama3",
	}
}

func TestBuildCLIContainerResolvesGraph(t *testing.T) {
	container, err := BuildCLIContainer(cliFlags())
	require.NoError(t, err)

	err = container.Invoke(func(
		docFilter ports.DocumentFilter,
		service *core.ClassifierService,
		stores *factory.StoreFactory,
		consultant core.OracleConsultant,
	) {
		require.NotNil(t, docFilter)
		require.NotNil(t, service)
		require.NotNil(t, stores)
		assert.Nil(t, consultant)

		// The wired service classifies without any external calls when
		// oracle consultation is off.
		rec, err := service.ClassifyEmail(context.Background(), &core.Document{
			ID:      "smoke-1",
			Subject: "Your Netflix subscription",
			Sender:  "billing@netflix.com",
			Body:    "Your monthly subscription payment of $15.99 was processed.",
		})
		require.NoError(t, err)
		assert.Nil(t, rec.Oracle)
		assert.Greater(t, rec.TotalScore, 0)
	})
	require.NoError(t, err)
}

func TestBuildCLIContainerWithOracleEnabled(t *testing.T) {
	flags := cliFlags()
	flags.OracleMode = "review"

	container, err := BuildCLIContainer(flags)
	require.NoError(t, err)

	err = container.Invoke(func(consultant core.OracleConsultant) {
		require.NotNil(t, consultant)
	})
	require.NoError(t, err)
}
