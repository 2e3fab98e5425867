// Package article defines core types shared across the fetch and extraction subsystems.
package article

import (
	"fmt"
	"net/url"
	"strings"
)

// Sentinel values returned in place of fields no cascade could fill.
const (
	TitleNotFound   = "title not found"
	DateNotFound    = "date not found"
	ContentNotFound = "content not found"
)

// Request is a validated, absolute http(s) URL ready to be fetched.
type Request struct {
	URL *url.URL
}

// NewRequest validates raw and builds a Request.
// Only absolute http and https URLs with a host are accepted.
func NewRequest(raw string) (Request, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Request{}, fmt.Errorf("empty url: %w", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Request{}, fmt.Errorf("parse url %q: %w", raw, ErrInvalidURL)
	}
	if !u.IsAbs() || u.Host == "" {
		if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
			return Request{}, fmt.Errorf("scheme %q: %w", u.Scheme, ErrUnsupportedScheme)
		}
		return Request{}, fmt.Errorf("url %q is not absolute: %w", raw, ErrInvalidURL)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Request{}, fmt.Errorf("scheme %q: %w", u.Scheme, ErrUnsupportedScheme)
	}
	return Request{URL: u}, nil
}

// String returns the request URL.
func (r Request) String() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Page is a successful fetch: raw HTML plus the status that delivered it.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Body       []byte
	Attempts   int
}

// Article is the terminal extraction artifact. Every field is always set,
// either to extracted text or to its sentinel.
type Article struct {
	Title       string `json:"title"`
	PublishedAt string `json:"date"`
	Body        string `json:"content"`
}

// HasTitle reports whether a title was extracted.
func (a Article) HasTitle() bool { return a.Title != TitleNotFound }

// HasDate reports whether a publication date was extracted.
func (a Article) HasDate() bool { return a.PublishedAt != DateNotFound }

// HasBody reports whether body text was extracted.
func (a Article) HasBody() bool { return a.Body != ContentNotFound }
