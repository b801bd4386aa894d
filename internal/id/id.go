// Package id generates client-side temporary identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the temporary keys handed out before the server assigns ids.
const (
	SectionPrefix = "tmp"
	ImagePrefix   = "img"
)

// Generate creates a prefixed NanoID, e.g. "tmp-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics when the system has no entropy.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// HasPrefix reports whether value was generated with prefix.
func HasPrefix(value, prefix string) bool {
	return strings.HasPrefix(value, prefix+"-")
}
