package extractor

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/JakeFAU/referent/internal/article"
)

// ParsePublished interprets a raw publication date string. ok is false for the
// date sentinel and for strings dateparse does not understand; the raw value
// remains the authoritative field either way.
func ParsePublished(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == article.DateNotFound {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
