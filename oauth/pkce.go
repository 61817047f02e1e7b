package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/viant/mcpcore/corerr"
)

// PKCE holds an RFC 7636 S256 code verifier/challenge pair. Only S256 is
// supported, per spec §4.E; "plain" is not offered.
type PKCE struct {
	Verifier  string
	Challenge string
	Method    string
}

// NewPKCE generates a fresh 64-byte verifier (per spec §4.E) and its S256
// challenge. Base64url-no-pad of 64 raw bytes yields an 86-character
// verifier, within the RFC 7636 [43,128] bound.
func NewPKCE() (*PKCE, error) {
	raw := make([]byte, 64)
	if _, err := rand.Read(raw); err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "failed to generate PKCE verifier", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])
	return &PKCE{Verifier: verifier, Challenge: challenge, Method: "S256"}, nil
}

// newState generates a fresh random state/nonce value for the authorization
// request: 32 random bytes, base64url-encoded without padding.
func newState() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", corerr.Wrap(corerr.KindOAuth, "oauth", "failed to generate state", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
