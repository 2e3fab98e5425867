package collyfetcher

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/JakeFAU/referent/internal/article"
)

var errNoResponse = errors.New("no response received")

// classifyStatus maps a received status to a failure kind. ok is true for a
// usable 2xx response with a non-blank body.
func classifyStatus(code int, body []byte) (article.FailureKind, bool) {
	switch {
	case code >= 200 && code < 300:
		if len(bytes.TrimSpace(body)) == 0 {
			return article.KindEmptyBody, false
		}
		return "", true
	case code == http.StatusForbidden:
		return article.KindForbidden, false
	case code == http.StatusNotFound:
		return article.KindNotFound, false
	case code == http.StatusTooManyRequests:
		return article.KindRateLimited, false
	default:
		return article.KindHTTPError, false
	}
}

// classifyTransportError separates "no response at all" failures. parent is
// the caller context; attemptCtx carries the per-attempt deadline.
func classifyTransportError(parent, attemptCtx context.Context, err error) *article.FetchError {
	if parent.Err() != nil {
		return &article.FetchError{Kind: article.KindCanceled, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
		return &article.FetchError{Kind: article.KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &article.FetchError{Kind: article.KindTimeout, Err: err}
	}
	return &article.FetchError{Kind: article.KindUnreachable, Err: err}
}
