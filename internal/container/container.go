// Package container wires the application's dependencies from configuration.
// Long-lived collaborators (logger, keyword tables, rate source, model client, PDF
// extractor) are built once; per-analysis state such as the exchange session is
// created fresh for every call to NewAnalyzer.
package container

import (
	"fmt"
	"time"

	"fedelife/expense-extractor/internal/config"
	"fedelife/expense-extractor/internal/exchange"
	"fedelife/expense-extractor/internal/jsonrecovery"
	"fedelife/expense-extractor/internal/llm"
	"fedelife/expense-extractor/internal/logging"
	"fedelife/expense-extractor/internal/merger"
	"fedelife/expense-extractor/internal/models"
	"fedelife/expense-extractor/internal/pdftext"
	"fedelife/expense-extractor/internal/pipeline"
	"fedelife/expense-extractor/internal/statementparser"
	"fedelife/expense-extractor/internal/store"

	"github.com/shopspring/decimal"
)

// Container holds the application dependencies. It is immutable after creation.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	store      *store.KeywordStore
	keywords   models.KeywordTables
	rateSource exchange.RateSource
	model      llm.Client
	extractor  pdftext.Extractor

	modelSet  bool
	sourceSet bool
}

// Option overrides a dependency, mostly for tests.
type Option func(*Container)

// WithLogger replaces the logger built from configuration.
func WithLogger(logger logging.Logger) Option {
	return func(c *Container) { c.logger = logger }
}

// WithModelClient replaces the Gemini client. A nil client disables the model path.
func WithModelClient(client llm.Client) Option {
	return func(c *Container) {
		c.model = client
		c.modelSet = true
	}
}

// WithRateSource replaces the configured exchange rate source.
func WithRateSource(source exchange.RateSource) Option {
	return func(c *Container) {
		c.rateSource = source
		c.sourceSet = true
	}
}

// WithExtractor replaces the PDF extractor.
func WithExtractor(extractor pdftext.Extractor) Option {
	return func(c *Container) { c.extractor = extractor }
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	c := &Container{config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
	}

	c.store = store.NewKeywordStore(cfg.Extraction.KeywordsFile, c.logger)
	keywords, err := c.store.LoadKeywordTables()
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword tables: %w", err)
	}
	c.keywords = keywords

	if !c.sourceSet {
		source, err := exchange.NewRateSource(
			cfg.Currency.RateSource,
			cfg.Currency.RateURL,
			cfg.Currency.RateXPath,
			decimal.NewFromFloat(cfg.Currency.FallbackRate),
			seconds(cfg.Currency.TimeoutSeconds),
			c.logger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to configure exchange rate source: %w", err)
		}
		c.rateSource = source
	}

	if !c.modelSet {
		if cfg.AI.Enabled && cfg.AI.APIKey != "" {
			client, err := llm.NewGeminiClient(llm.GeminiConfig{
				APIKey:        cfg.AI.APIKey,
				Model:         cfg.AI.Model,
				Temperature:   cfg.AI.Temperature,
				MaxInputChars: cfg.AI.MaxInputChars,
				Timeout:       seconds(cfg.AI.TimeoutSeconds),
				LocalCode:     cfg.Currency.Local,
				ForeignCode:   cfg.Currency.Foreign,
			}, c.logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create model client: %w", err)
			}
			c.model = client
			c.logger.Info("Model extraction enabled", logging.F(logging.FieldModel, cfg.AI.Model))
		} else {
			c.logger.Info("Model extraction disabled")
		}
	}

	if c.extractor == nil {
		c.extractor = pdftext.NewDefaultExtractor()
	}

	c.logger.Debug("Container initialized",
		logging.F(logging.FieldSource, c.rateSource.Name()),
		logging.F("ai_enabled", c.model != nil))
	return c, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// NewSession starts an exchange session seeded with the configured fallback rate.
func (c *Container) NewSession() *exchange.Session {
	return exchange.NewSession(
		c.rateSource,
		c.config.Currency.Foreign,
		c.config.Currency.Local,
		decimal.NewFromFloat(c.config.Currency.FallbackRate),
		c.logger,
	)
}

// PipelineOptions maps configuration onto the stage options.
func (c *Container) PipelineOptions() pipeline.Options {
	cfg := c.config
	return pipeline.Options{
		Parser: statementparser.Options{
			MinLineLength:        cfg.Extraction.MinLineLength,
			MinAmount:            decimal.NewFromFloat(cfg.Extraction.MinAmount),
			MaxAmount:            decimal.NewFromFloat(cfg.Extraction.MaxAmount),
			DescriptionMaxLength: cfg.Extraction.DescriptionMaxLength,
		},
		Recovery: jsonrecovery.Options{
			MaxFallbackElements:  cfg.Recovery.MaxFallbackElements,
			DescriptionMaxLength: cfg.Extraction.DescriptionMaxLength,
		},
		Merge: merger.Options{
			WordOverlapThreshold: cfg.Merge.WordOverlapThreshold,
			AmountEpsilon:        decimal.NewFromFloat(cfg.Merge.AmountEpsilon),
		},
	}
}

// NewAnalyzer returns an analyzer bound to a fresh exchange session.
func (c *Container) NewAnalyzer() *pipeline.Analyzer {
	return pipeline.NewAnalyzer(c.keywords, c.NewSession(), c.model, c.PipelineOptions(), c.logger)
}

// NewRecoveryParser returns a standalone model-response parser.
func (c *Container) NewRecoveryParser() *jsonrecovery.Parser {
	return jsonrecovery.NewParser(c.PipelineOptions().Recovery, c.logger)
}

// GetLogger returns the container's logger.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the configuration the container was built from.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the keyword store.
func (c *Container) GetStore() *store.KeywordStore {
	return c.store
}

// GetKeywords returns the loaded keyword tables.
func (c *Container) GetKeywords() models.KeywordTables {
	return c.keywords
}

// GetModelClient returns the model client, or nil when the model path is disabled.
func (c *Container) GetModelClient() llm.Client {
	return c.model
}

// GetExtractor returns the PDF extractor.
func (c *Container) GetExtractor() pdftext.Extractor {
	return c.extractor
}

// GetRateSource returns the exchange rate source.
func (c *Container) GetRateSource() exchange.RateSource {
	return c.rateSource
}

// Close releases container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
