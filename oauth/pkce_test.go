package oauth

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPKCE(t *testing.T) {
	pkce, err := NewPKCE()
	assert.NoError(t, err)
	assert.Equal(t, "S256", pkce.Method)
	assert.NotEmpty(t, pkce.Verifier)

	sum := sha256.Sum256([]byte(pkce.Verifier))
	expected := base64.RawURLEncoding.EncodeToString(sum[:])
	assert.Equal(t, expected, pkce.Challenge)
}

func TestNewPKCE_VerifierLengthWithinRFC7636Bounds(t *testing.T) {
	pkce, err := NewPKCE()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, len(pkce.Verifier), 43)
	assert.LessOrEqual(t, len(pkce.Verifier), 128)
}

func TestNewPKCE_Unique(t *testing.T) {
	a, err := NewPKCE()
	assert.NoError(t, err)
	b, err := NewPKCE()
	assert.NoError(t, err)
	assert.NotEqual(t, a.Verifier, b.Verifier)
}
