// Package pipeline composes fetching and extraction into the single
// retrieve-article operation.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/article"
)

// Result is a retrieved article with fetch diagnostics.
type Result struct {
	Article  article.Article
	URL      string
	FinalURL string
	Attempts int
}

// Service runs fetch then extract for a single URL.
type Service struct {
	fetcher   article.Fetcher
	extractor article.Extractor
	logger    *zap.Logger
}

// New constructs a Service.
func New(fetcher article.Fetcher, extractor article.Extractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:   fetcher,
		extractor: extractor,
		logger:    logger,
	}
}

// Retrieve fetches req and extracts its article. The extractor never runs on a
// failed fetch; fetch failures come back as *article.FetchError.
func (s *Service) Retrieve(ctx context.Context, req article.Request) (Result, error) {
	page, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		var fe *article.FetchError
		if !errors.As(err, &fe) {
			err = &article.FetchError{Kind: article.KindUnreachable, URL: req.String(), Attempts: 1, Err: err}
		}
		return Result{}, err
	}

	art := s.extractor.Extract(page.Body)
	s.logger.Info("article retrieved",
		zap.String("url", req.String()),
		zap.String("final_url", page.FinalURL),
		zap.Int("attempts", page.Attempts),
		zap.Int("bytes", len(page.Body)),
		zap.Bool("title", art.HasTitle()),
		zap.Bool("date", art.HasDate()),
		zap.Bool("content", art.HasBody()),
	)
	return Result{
		Article:  art,
		URL:      req.String(),
		FinalURL: page.FinalURL,
		Attempts: page.Attempts,
	}, nil
}

// RetrieveURL validates rawURL before retrieving it. Validation failures wrap
// article.ErrInvalidURL or article.ErrUnsupportedScheme.
func (s *Service) RetrieveURL(ctx context.Context, rawURL string) (Result, error) {
	req, err := article.NewRequest(rawURL)
	if err != nil {
		return Result{}, fmt.Errorf("validate url: %w", err)
	}
	return s.Retrieve(ctx, req)
}
