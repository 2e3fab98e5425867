// Package uuid provides request ID generation.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates time-ordered UUID strings for request correlation.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv7 string, falling back to a random v4 when the v7
// clock sequence cannot be produced.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err == nil {
		return id.String(), nil
	}
	v4, err4 := uuid.NewRandom()
	if err4 != nil {
		return "", fmt.Errorf("generate request id: %w", err)
	}
	return v4.String(), nil
}

// Valid reports whether s parses as a UUID. Used to accept caller supplied
// X-Request-ID values.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
