package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/article"
	"github.com/JakeFAU/referent/internal/extractor"
	collyfetcher "github.com/JakeFAU/referent/internal/fetcher/colly"
)

type stubFetcher struct {
	page  article.Page
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ article.Request) (article.Page, error) {
	f.calls++
	return f.page, f.err
}

type countingExtractor struct {
	calls int
}

func (e *countingExtractor) Extract(_ []byte) article.Article {
	e.calls++
	return article.Article{Title: "t", PublishedAt: "d", Body: "b"}
}

func mustRequest(t *testing.T, raw string) article.Request {
	t.Helper()
	req, err := article.NewRequest(raw)
	require.NoError(t, err)
	return req
}

func TestRetrieveSkipsExtractionOnFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{err: &article.FetchError{Kind: article.KindNotFound, StatusCode: 404, Attempts: 1}}
	ext := &countingExtractor{}
	svc := New(fetcher, ext, zap.NewNop())

	_, err := svc.Retrieve(context.Background(), mustRequest(t, "https://example.com/missing"))
	kind, ok := article.KindOf(err)
	require.True(t, ok)
	require.Equal(t, article.KindNotFound, kind)
	require.Zero(t, ext.calls)
}

func TestRetrieveWrapsUntypedFetcherErrors(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	svc := New(&stubFetcher{err: cause}, &countingExtractor{}, nil)
	_, err := svc.Retrieve(context.Background(), mustRequest(t, "https://example.com"))
	kind, ok := article.KindOf(err)
	require.True(t, ok)
	require.Equal(t, article.KindUnreachable, kind)
	require.ErrorIs(t, err, cause)
}

func TestRetrieveExtractsOnSuccess(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{page: article.Page{StatusCode: 200, Body: []byte("<html></html>"), Attempts: 2}}
	ext := &countingExtractor{}
	res, err := New(fetcher, ext, nil).Retrieve(context.Background(), mustRequest(t, "https://example.com/a"))
	require.NoError(t, err)
	require.Equal(t, 1, ext.calls)
	require.Equal(t, 2, res.Attempts)
	require.Equal(t, "https://example.com/a", res.URL)
	require.Equal(t, "t", res.Article.Title)
}

func TestRetrieveURLRejectsBeforeFetching(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	svc := New(fetcher, &countingExtractor{}, nil)

	_, err := svc.RetrieveURL(context.Background(), "ftp://example.com/file")
	require.ErrorIs(t, err, article.ErrUnsupportedScheme)
	_, err = svc.RetrieveURL(context.Background(), "not a url")
	require.ErrorIs(t, err, article.ErrInvalidURL)
	require.Zero(t, fetcher.calls)
}

func TestRetrieveEndToEnd(t *testing.T) {
	t.Parallel()

	page := `<html><head><meta property="og:title" content="OG"></head><body>
<nav>Menu</nav><article><h1>Real headline</h1><time datetime="2024-04-04T12:00:00Z">April 4</time>
<p>` + strings.Repeat("Paragraph text. ", 10) + `</p></article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	fetcher := collyfetcher.New(collyfetcher.Config{MaxAttempts: 1, Timeout: 5 * time.Second})
	svc := New(fetcher, extractor.New(extractor.Config{}, nil), zap.NewNop())

	res, err := svc.RetrieveURL(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, "Real headline", res.Article.Title)
	require.Equal(t, "2024-04-04T12:00:00Z", res.Article.PublishedAt)
	require.True(t, strings.HasPrefix(res.Article.Body, "Real headline April 4 Paragraph text."), res.Article.Body)
	require.NotContains(t, res.Article.Body, "Menu")
	require.Equal(t, 1, res.Attempts)
}
