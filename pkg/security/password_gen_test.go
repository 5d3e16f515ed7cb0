package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedPasswordsAreDistinct(t *testing.T) {
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		p, err := GenerateSecurePassword(16, true)
		require.NoError(t, err)

		assert.Len(t, p, 16)
		assert.False(t, seen[p], "duplicate password generated")
		seen[p] = true

		assert.True(t, strings.ContainsAny(p, lowerChars), "missing lowercase in %q", p)
		assert.True(t, strings.ContainsAny(p, upperChars), "missing uppercase in %q", p)
		assert.True(t, strings.ContainsAny(p, digitChars), "missing digit in %q", p)
		assert.True(t, strings.ContainsAny(p, symbolChars), "missing symbol in %q", p)
	}
}

func TestGeneratedPasswordWithoutSymbols(t *testing.T) {
	p, err := GenerateSecurePassword(12, false)
	require.NoError(t, err)

	assert.Len(t, p, 12)
	assert.False(t, strings.ContainsAny(p, symbolChars))
}

func TestGeneratedPasswordTooShort(t *testing.T) {
	_, err := GenerateSecurePassword(4, true)
	assert.Error(t, err)
}
