// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/api"
	"github.com/JakeFAU/referent/internal/config"
	"github.com/JakeFAU/referent/internal/extractor"
	collyfetcher "github.com/JakeFAU/referent/internal/fetcher/colly"
	"github.com/JakeFAU/referent/internal/id/uuid"
	"github.com/JakeFAU/referent/internal/metrics"
	"github.com/JakeFAU/referent/internal/pipeline"
	"github.com/JakeFAU/referent/internal/translate"
)

// App holds the services shared by the CLI commands: the retrieval pipeline,
// the optional translator and the logger they all write to.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	pipeline   *pipeline.Service
	translator *translate.Client
}

// Option customizes App construction.
type Option func(*options)

type options struct {
	fetcherOpts []collyfetcher.Option
}

// WithFetcherOptions passes extra options to the colly fetcher.
func WithFetcherOptions(opts ...collyfetcher.Option) Option {
	return func(o *options) { o.fetcherOpts = append(o.fetcherOpts, opts...) }
}

// New wires the fetcher, extractor, pipeline and translator from cfg.
func New(cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	metrics.Init()
	metrics.SetTrackedSites(cfg.Metrics.TrackedSites)

	fetcherOpts := append([]collyfetcher.Option{
		collyfetcher.WithLogger(logger.Named("fetcher")),
	}, o.fetcherOpts...)
	fetcher := collyfetcher.New(collyfetcher.Config{
		MaxAttempts:    cfg.Fetch.MaxAttempts,
		Timeout:        cfg.AttemptTimeout(),
		BaseDelay:      cfg.BackoffBase(),
		MaxDelay:       cfg.BackoffMax(),
		Jitter:         cfg.Jitter(),
		SearchReferrer: cfg.Fetch.SearchReferrer,
		MaxBodyBytes:   cfg.Fetch.MaxBodyBytes,
	}, fetcherOpts...)
	ext := extractor.New(extractor.Config{
		MinContentLength: cfg.Extract.MinContentLength,
	}, logger.Named("extractor"))

	a := &App{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline.New(fetcher, ext, logger.Named("pipeline")),
	}
	if cfg.Translate.Enabled {
		a.translator = translate.New(translate.Config{
			BaseURL:        cfg.Translate.BaseURL,
			APIKey:         cfg.Translate.APIKey,
			Model:          cfg.Translate.Model,
			TargetLanguage: cfg.Translate.TargetLanguage,
			Temperature:    cfg.Translate.Temperature,
			MaxTokens:      cfg.Translate.MaxTokens,
			AppURL:         cfg.Translate.AppURL,
			AppTitle:       cfg.Translate.AppTitle,
			Timeout:        cfg.TranslateTimeout(),
		}, logger.Named("translate"))
	}
	logger.Debug("application services initialized",
		zap.Int("max_attempts", cfg.Fetch.MaxAttempts),
		zap.Bool("translate", a.translator != nil),
	)
	return a, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Pipeline returns the fetch-and-extract service.
func (a *App) Pipeline() *pipeline.Service {
	return a.pipeline
}

// Translator returns the translation client, or nil when translation is disabled.
func (a *App) Translator() *translate.Client {
	return a.translator
}

// Server builds the HTTP API over the App's services.
func (a *App) Server() *api.Server {
	var tr api.Translator
	if a.translator != nil {
		tr = a.translator
	}
	return api.NewServer(a.pipeline, tr, uuid.New(), a.cfg, a.logger.Named("api"))
}

// Close flushes buffered logs.
func (a *App) Close() {
	// Sync on stderr reports EINVAL on some platforms; nothing useful to do about it.
	_ = a.logger.Sync()
}
