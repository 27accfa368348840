package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("tokens are URL-safe and non-empty", func(t *testing.T) {
		tok, err := New()

		require.NoError(t, err)
		assert.Len(t, tok, 22) // 16 bytes, unpadded base64.
		assert.NotContains(t, tok, "+")
		assert.NotContains(t, tok, "/")
		assert.NotContains(t, tok, "=")
	})

	t.Run("consecutive tokens differ", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			tok, err := New()
			require.NoError(t, err)
			assert.False(t, seen[tok], "token %q generated twice", tok)
			seen[tok] = true
		}
	})
}
