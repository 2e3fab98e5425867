// Package collyfetcher implements the resilient article fetcher using gocolly.
package collyfetcher

import (
	"context"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/article"
	"github.com/JakeFAU/referent/internal/clock/system"
	"github.com/JakeFAU/referent/internal/metrics"
)

// Config controls retry and timeout behavior.
type Config struct {
	MaxAttempts    int
	Timeout        time.Duration
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Jitter         time.Duration
	SearchReferrer string
	// MaxBodyBytes caps the bytes read from a response; longer bodies are
	// truncated. Zero selects DefaultMaxBodyBytes.
	MaxBodyBytes int
}

// DefaultMaxBodyBytes matches colly's own default response limit.
const DefaultMaxBodyBytes = 10 * 1024 * 1024

// Attempt describes one network call within a fetch.
type Attempt struct {
	Index    int
	Profile  HeaderProfile
	Deadline time.Time
}

// Fetcher implements article.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	policy        *RetryPolicy
	baseCollector *colly.Collector
	profiles      []HeaderProfile
	clock         article.Clock
	newRand       func() *rand.Rand
	sleep         func(ctx context.Context, d time.Duration) error
	logger        *zap.Logger
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithClock sets the clock used to compute attempt deadlines.
func WithClock(c article.Clock) Option {
	return func(f *Fetcher) { f.clock = c }
}

// WithRand sets the factory for the per-fetch random source.
func WithRand(newRand func() *rand.Rand) Option {
	return func(f *Fetcher) { f.newRand = newRand }
}

// WithSleep replaces the backoff sleeper.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(f *Fetcher) { f.sleep = sleep }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) { f.baseCollector.WithTransport(rt) }
}

// WithProfiles replaces the header profile pool.
func WithProfiles(pool []HeaderProfile) Option {
	return func(f *Fetcher) {
		if len(pool) > 0 {
			f.profiles = pool
		}
	}
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

type attemptResult struct {
	responded  bool
	statusCode int
	finalURL   string
	body       []byte
	err        error
}

// New builds a Fetcher.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.SearchReferrer == "" {
		cfg.SearchReferrer = DefaultSearchReferrer
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(cfg.MaxBodyBytes),
	)
	c.ParseHTTPErrorResponse = true
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	f := &Fetcher{
		cfg:           cfg,
		policy:        NewRetryPolicy(cfg.MaxAttempts, cfg.BaseDelay, cfg.MaxDelay, cfg.Jitter),
		baseCollector: c,
		profiles:      defaultProfiles,
		clock:         system.New(),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // header rotation only
		},
		sleep:  sleepContext,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the page, retrying forbidden and timed out attempts with
// backoff until the attempt budget is spent. Attempts are strictly sequential.
func (f *Fetcher) Fetch(ctx context.Context, req article.Request) (article.Page, error) {
	target := req.String()
	rng := f.newRand()
	logger := f.logger.With(zap.String("url", target))

	for i := 0; ; i++ {
		attempt := Attempt{
			Index:    i,
			Profile:  PickProfile(rng, f.profiles),
			Deadline: f.clock.Now().Add(f.cfg.Timeout),
		}
		logger.Debug("fetch attempt",
			zap.Int("attempt", i),
			zap.String("profile", attempt.Profile.Name),
			zap.Time("deadline", attempt.Deadline),
		)

		page, ferr := f.attempt(ctx, req, attempt)
		attempts := i + 1
		if ferr == nil {
			page.Attempts = attempts
			metrics.ObserveFetchAttempt("success")
			metrics.ObserveFetch(target, "success", attempts, len(page.Body))
			return page, nil
		}
		ferr.Attempts = attempts
		ferr.URL = target
		metrics.ObserveFetchAttempt(string(ferr.Kind))

		if !f.policy.ShouldRetry(ferr.Kind, attempts) {
			logger.Warn("fetch failed",
				zap.String("kind", string(ferr.Kind)),
				zap.Int("status", ferr.StatusCode),
				zap.Int("attempts", attempts),
				zap.Error(ferr.Err),
			)
			metrics.ObserveFetch(target, string(ferr.Kind), attempts, 0)
			return article.Page{}, ferr
		}

		delay := f.policy.Backoff(i, rng)
		logger.Info("retrying fetch",
			zap.String("kind", string(ferr.Kind)),
			zap.Int("status", ferr.StatusCode),
			zap.Int("attempt", i),
			zap.Duration("delay", delay),
		)
		metrics.ObserveBackoff(delay)
		if err := f.sleep(ctx, delay); err != nil {
			metrics.ObserveFetch(target, string(article.KindCanceled), attempts, 0)
			return article.Page{}, &article.FetchError{
				Kind:       article.KindCanceled,
				StatusCode: ferr.StatusCode,
				Attempts:   attempts,
				URL:        target,
				Err:        err,
			}
		}
	}
}

// attempt performs one request bounded by a.Deadline. Visit is synchronous and
// the deadline is carried by the request context, so nothing writes to result
// once attempt returns.
func (f *Fetcher) attempt(ctx context.Context, req article.Request, a Attempt) (article.Page, *article.FetchError) {
	attemptCtx, cancel := context.WithDeadline(ctx, a.Deadline)
	defer cancel()
	if err := attemptCtx.Err(); err != nil {
		return article.Page{}, classifyTransportError(ctx, attemptCtx, err)
	}

	var result attemptResult
	collector := f.buildCollector(attemptCtx, Headers(a.Profile, a.Index, req.URL, f.cfg.SearchReferrer), &result)
	err := collector.Visit(req.String())
	if err == nil {
		err = result.err
	}
	if err != nil {
		return article.Page{}, classifyTransportError(ctx, attemptCtx, err)
	}
	if !result.responded {
		return article.Page{}, &article.FetchError{Kind: article.KindUnreachable, Err: errNoResponse}
	}
	if kind, ok := classifyStatus(result.statusCode, result.body); !ok {
		return article.Page{}, &article.FetchError{Kind: kind, StatusCode: result.statusCode}
	}
	return article.Page{
		URL:        req.String(),
		FinalURL:   result.finalURL,
		StatusCode: result.statusCode,
		Body:       result.body,
	}, nil
}

func (f *Fetcher) buildCollector(ctx context.Context, headers http.Header, result *attemptResult) *colly.Collector {
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	collector.ParseHTTPErrorResponse = true
	collector.MaxBodySize = f.cfg.MaxBodyBytes
	if ua := headers.Get("User-Agent"); ua != "" {
		collector.UserAgent = ua
	}
	f.configureCollectorHooks(collector, headers, result)
	return collector
}

func (f *Fetcher) configureCollectorHooks(hooks collectorHooks, headers http.Header, result *attemptResult) {
	hooks.OnRequest(func(r *colly.Request) {
		copyHeaders(headers, r)
	})

	hooks.OnResponse(func(r *colly.Response) {
		finalURL := ""
		if r.Request != nil && r.Request.URL != nil {
			finalURL = r.Request.URL.String()
		}
		if len(r.Body) >= f.cfg.MaxBodyBytes {
			f.logger.Debug("response body reached size limit",
				zap.String("url", finalURL),
				zap.Int("bytes", len(r.Body)),
				zap.Int("limit", f.cfg.MaxBodyBytes),
			)
		}
		*result = attemptResult{
			responded:  true,
			statusCode: r.StatusCode,
			finalURL:   finalURL,
			body:       append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(_ *colly.Response, err error) {
		result.err = err
	})
}

func copyHeaders(headers http.Header, r *colly.Request) {
	if headers == nil || r.Headers == nil {
		return
	}
	for key, values := range headers {
		r.Headers.Del(key)
		for _, v := range values {
			r.Headers.Add(key, v)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
