package article

import (
	"errors"
	"fmt"
	"strings"
)

// Caller-side validation errors. They are outside the fetch failure taxonomy.
var (
	ErrInvalidURL        = errors.New("invalid url")
	ErrUnsupportedScheme = errors.New("only http and https urls are supported")
)

// FailureKind classifies why a fetch did not produce HTML.
type FailureKind string

// Failure kinds produced by the fetcher.
const (
	KindForbidden   FailureKind = "forbidden"
	KindNotFound    FailureKind = "not_found"
	KindRateLimited FailureKind = "rate_limited"
	KindHTTPError   FailureKind = "http_error"
	KindTimeout     FailureKind = "timeout"
	KindUnreachable FailureKind = "unreachable"
	KindEmptyBody   FailureKind = "empty_body"
	KindCanceled    FailureKind = "canceled"
)

// Retryable reports whether the fetcher retries this kind within a single call.
func (k FailureKind) Retryable() bool {
	return k == KindForbidden || k == KindTimeout
}

// FetchError is the typed failure outcome of a fetch.
type FetchError struct {
	Kind FailureKind
	// StatusCode is zero when no response was received.
	StatusCode int
	Attempts   int
	URL        string
	Err        error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetch %s: %s", e.URL, e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	fmt.Fprintf(&b, " after %d attempt(s)", e.Attempts)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from err, if err carries a FetchError.
func KindOf(err error) (FailureKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}
