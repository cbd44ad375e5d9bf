package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/maj/doc-classifier/internal/config"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/factory"
	"github.com/maj/doc-classifier/internal/legal"
	"github.com/maj/doc-classifier/internal/logging"
	"github.com/maj/doc-classifier/internal/oracle"
	"github.com/maj/doc-classifier/internal/ports"
	"github.com/maj/doc-classifier/internal/scoring"
	"github.com/maj/doc-classifier/internal/utils"
	"github.com/maj/doc-classifier/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewOracleClientFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register oracle client
	if err := container.Provide(func(f *factory.OracleClientFactory) (core.OracleClient, error) {
		return f.CreateOracleClient()
	}); err != nil {
		return nil, err
	}

	// Register oracle consultant
	if err := container.Provide(func(client core.OracleClient, cfg *config.Config, logger *zap.Logger) *oracle.Consultant {
		oc := cfg.GetOracle()
		return oracle.NewConsultant(client, oracle.Config{
			Timeout: oc.Timeout,
			Retry: oracle.RetryPolicy{
				MaxAttempts:  oc.MaxAttempts,
				InitialDelay: oc.InitialDelay,
				Multiplier:   oc.BackoffMultiplier,
				MaxDelay:     oc.MaxDelay,
			},
			DocumentScale: oracle.DocumentScoreScale,
			BreakerOpen:   oc.BreakerEnabled,
		}, logger)
	}); err != nil {
		return nil, err
	}

	// Register result store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ResultStore, error) {
		return f.CreateResultStore()
	}); err != nil {
		return nil, err
	}

	// Register classifier service
	if err := container.Provide(func(
		engines *factory.EngineFactory,
		consultant *oracle.Consultant,
		store core.ResultStore,
		cfg *config.Config,
		logger *zap.Logger,
	) (*core.ClassifierService, error) {
		emailEngine, err := engines.CreateEmailEngine()
		if err != nil {
			return nil, err
		}
		documentEngine, err := engines.CreateDocumentEngine()
		if err != nil {
			return nil, err
		}
		return buildService(emailEngine, documentEngine, consultant, store, cfg, logger), nil
	}); err != nil {
		return nil, err
	}

	// Register document filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.DocumentFilter, error) {
		return f.CreateDocumentFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// buildService assembles the classifier service with its optional
// collaborators resolved from configuration.
func buildService(
	emailEngine, documentEngine *scoring.Engine,
	consultant *oracle.Consultant,
	store core.ResultStore,
	cfg *config.Config,
	logger *zap.Logger,
) *core.ClassifierService {
	var prefilter *scoring.Prefilter
	if cfg.GetBool("scoring.prefilter_enabled") {
		prefilter = scoring.NewPrefilter(cfg.GetStringSlice("scoring.prefilter_keywords"))
	}

	var trust core.TrustChecker
	if domains := cfg.GetStringSlice("trust.trusted_domains"); len(domains) > 0 {
		logger.Info("Loaded trusted domains", zap.Strings("domains", domains))
		trust = whitelist.NewChecker(domains, logger)
	}

	var legalID core.LegalIdentifier
	if cfg.GetBool("legal.enabled") {
		legalID = legal.NewIdentifier(logger)
	}

	mode := core.OracleMode(cfg.GetString("oracle.mode"))

	return core.NewClassifierService(
		emailEngine,
		documentEngine,
		prefilter,
		consultant,
		mode,
		trust,
		legalID,
		store,
		logger,
	)
}
