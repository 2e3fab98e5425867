package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/app"
	"github.com/JakeFAU/referent/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNew_RequiresLogger(t *testing.T) {
	t.Parallel()

	_, err := app.New(testConfig(t), nil)
	require.Error(t, err)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Fetch.MaxAttempts = 0
	_, err := app.New(cfg, zap.NewNop())
	require.ErrorContains(t, err, "fetch.max_attempts")
}

func TestNew_TranslatorFollowsConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	a, err := app.New(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, a.Translator())
	assert.NotNil(t, a.Pipeline())
	assert.Equal(t, cfg, a.Config())

	cfg.Translate.Enabled = true
	cfg.Translate.APIKey = "key"
	cfg.Translate.TimeoutSeconds = 7
	a, err = app.New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a.Translator())
	assert.Equal(t, 7*time.Second, a.Translator().Timeout())
	a.Close()
}

func TestApp_PipelineRetrievesArticle(t *testing.T) {
	t.Parallel()

	page := `<html><head><title>t</title></head><body>
<h1>Wired headline</h1><time datetime="2024-05-06">May 6</time>
<article><p>` + longParagraph + `</p></article></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	a, err := app.New(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	res, err := a.Pipeline().RetrieveURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Wired headline", res.Article.Title)
	assert.Equal(t, "2024-05-06", res.Article.PublishedAt)
	assert.Equal(t, longParagraph, res.Article.Body)
	assert.Equal(t, 1, res.Attempts)
}

func TestApp_ServerServesHealth(t *testing.T) {
	t.Parallel()

	a, err := app.New(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ready","translator":false}`, rec.Body.String())
}

const longParagraph = "The committee met on Tuesday to review the proposal in detail. " +
	"Members raised concerns about cost and schedule before agreeing to proceed."
