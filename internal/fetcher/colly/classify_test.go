package collyfetcher

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/referent/internal/article"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		body string
		kind article.FailureKind
		ok   bool
	}{
		{code: http.StatusOK, body: "<html></html>", ok: true},
		{code: http.StatusNoContent, body: "", kind: article.KindEmptyBody},
		{code: http.StatusForbidden, kind: article.KindForbidden},
		{code: http.StatusNotFound, kind: article.KindNotFound},
		{code: http.StatusTooManyRequests, kind: article.KindRateLimited},
		{code: http.StatusBadGateway, kind: article.KindHTTPError},
		{code: http.StatusUnauthorized, kind: article.KindHTTPError},
	}
	for _, tc := range tests {
		kind, ok := classifyStatus(tc.code, []byte(tc.body))
		require.Equal(t, tc.ok, ok, "status %d", tc.code)
		require.Equal(t, tc.kind, kind, "status %d", tc.code)
	}
}

func TestClassifyTransportError(t *testing.T) {
	t.Parallel()

	live := context.Background()
	expired, cancel := context.WithDeadline(live, time.Now().Add(-time.Second))
	defer cancel()

	require.Equal(t, article.KindTimeout, classifyTransportError(live, live, context.DeadlineExceeded).Kind)
	require.Equal(t, article.KindTimeout, classifyTransportError(live, expired, errors.New("aborted")).Kind)
	require.Equal(t, article.KindTimeout, classifyTransportError(live, live, timeoutErr{}).Kind)
	require.Equal(t, article.KindUnreachable, classifyTransportError(live, live, errors.New("connection refused")).Kind)

	canceled, stop := context.WithCancel(live)
	stop()
	got := classifyTransportError(canceled, canceled, context.Canceled)
	require.Equal(t, article.KindCanceled, got.Kind)
	require.ErrorIs(t, got, context.Canceled)
}
