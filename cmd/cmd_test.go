package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/referent/internal/app"
	"github.com/JakeFAU/referent/internal/config"
)

const articlePage = `<html><body>
<nav>Home News Sport</nav>
<h1>CLI headline</h1>
<time datetime="2024-02-03T04:05:06Z">Feb 3</time>
<article><p>The council approved the budget after a long debate about transport spending and housing.
Residents will see the first changes next spring when the new bus routes open.</p></article>
</body></html>`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExtractCommandPrintsArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer srv.Close()

	out, err := runRoot(t, "extract", srv.URL, "--pretty")
	require.NoError(t, err)
	require.Contains(t, out, "\n  \"title\"")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "CLI headline", got["title"])
	require.Equal(t, "2024-02-03T04:05:06Z", got["date"])
	require.Equal(t, "2024-02-03T04:05:06Z", got["published_iso"])
	require.Contains(t, got["content"], "The council approved the budget")
	require.NotContains(t, got["content"], "Home News Sport")
	require.EqualValues(t, 1, got["attempts"])
}

func TestExtractCommandReportsFailureKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	out, err := runRoot(t, "extract", srv.URL+"/missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not_found")
	require.Empty(t, out)
}

func TestExtractCommandRejectsInvalidURL(t *testing.T) {
	_, err := runRoot(t, "extract", "ftp://example.com/file")
	require.ErrorContains(t, err, "validate url")

	_, err = runRoot(t, "extract")
	require.Error(t, err)
}

func TestRootReportsInitFailure(t *testing.T) {
	orig := newApp
	t.Cleanup(func() { newApp = orig })
	newApp = func(config.Config, *zap.Logger) (*app.App, error) {
		return nil, errors.New("boom")
	}

	_, err := runRoot(t, "extract", "https://example.com")
	require.ErrorContains(t, err, "failed to initialize application services")
}

func TestRootRejectsMissingConfigFile(t *testing.T) {
	_, err := runRoot(t, "--config", "/does/not/exist.yaml", "extract", "https://example.com")
	require.ErrorContains(t, err, "load config")
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, handler, time.Second, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
