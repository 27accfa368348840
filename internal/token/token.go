// Package token generates opaque admission tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes gives 128 bits of entropy per token.
const tokenBytes = 16

// New returns an unpredictable URL-safe token sourced from the
// platform CSPRNG.
func New() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("rand.Read -> %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
