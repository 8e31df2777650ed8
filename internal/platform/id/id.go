// Package id generates and checks the opaque identifiers used in URLs.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Length is the size of every id NewID returns.
const Length = 26

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a random version 4 UUID encoded as lowercase unpadded
// base32, safe to embed in URL path segments.
func NewID() (string, error) {
	value, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(value[:])), nil
}

// Valid reports whether value has the shape NewID produces. It lets callers
// reject guessed or mangled ids before any lookup.
func Valid(value string) bool {
	if len(value) != Length {
		return false
	}
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			return false
		}
	}
	decoded, err := encoding.DecodeString(strings.ToUpper(value))
	if err != nil {
		return false
	}
	parsed, err := uuid.FromBytes(decoded)
	return err == nil && parsed.Version() == 4 && parsed.Variant() == uuid.RFC4122
}
