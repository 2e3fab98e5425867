package article

import (
	"context"
	"time"
)

// Fetcher retrieves raw HTML for a request or returns a *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Page, error)
}

// Extractor turns raw HTML into an Article. It never fails.
type Extractor interface {
	Extract(html []byte) Article
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces request IDs.
type IDGenerator interface {
	NewID() (string, error)
}
