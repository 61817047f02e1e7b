package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
)

func TestBeginAuthorization_IncludesPKCEParams(t *testing.T) {
	cfg := Config{
		ClientID:              "client-1",
		RedirectURL:           "http://localhost/callback",
		AuthorizationEndpoint: "https://as.example.com/authorize",
		TokenEndpoint:         "https://as.example.com/token",
	}
	req, err := BeginAuthorization(cfg)
	assert.NoError(t, err)
	assert.Contains(t, req.URL, "code_challenge=")
	assert.Contains(t, req.URL, "code_challenge_method=S256")
	assert.NotEmpty(t, req.State)
	assert.NotEmpty(t, req.Verifier)
}

func TestExchange_TradesCodeForToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.FormValue("code"))
		assert.Equal(t, "verifier-xyz", r.FormValue("code_verifier"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	cfg := Config{ClientID: "client-1", TokenEndpoint: srv.URL, HTTPClient: srv.Client()}
	client, err := Exchange(context.Background(), cfg, "auth-code", "verifier-xyz")
	assert.NoError(t, err)

	header, err := client.Authorize(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", header)
}

func TestValidateState_RejectsMismatch(t *testing.T) {
	issued := &AuthorizationRequest{State: "expected-state", StateExpiry: time.Now().Add(time.Minute)}
	assert.NoError(t, ValidateState(issued, "expected-state"))
	assert.Error(t, ValidateState(issued, "wrong-state"))
}

func TestValidateState_RejectsExpired(t *testing.T) {
	issued := &AuthorizationRequest{State: "expected-state", StateExpiry: time.Now().Add(-time.Second)}
	assert.Error(t, ValidateState(issued, "expected-state"))
}

func TestCompleteAuthorization_ValidatesStateBeforeExchange(t *testing.T) {
	exchanged := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanged = true
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"token_type":   "Bearer",
		})
	}))
	defer srv.Close()

	cfg := Config{ClientID: "client-1", TokenEndpoint: srv.URL, HTTPClient: srv.Client()}
	issued := &AuthorizationRequest{State: "expected-state", Verifier: "verifier-xyz", StateExpiry: time.Now().Add(time.Minute)}

	_, err := CompleteAuthorization(context.Background(), cfg, issued, "wrong-state", "auth-code")
	assert.Error(t, err)
	assert.False(t, exchanged, "exchange must not happen when state validation fails")

	_, err = CompleteAuthorization(context.Background(), cfg, issued, "expected-state", "auth-code")
	assert.NoError(t, err)
	assert.True(t, exchanged)
}

func TestFromToken_Authorize(t *testing.T) {
	cfg := Config{ClientID: "client-1", TokenEndpoint: "https://as.example.com/token"}
	token := &oauth2.Token{AccessToken: "abc", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	client := FromToken(context.Background(), cfg, token)

	header, err := client.Authorize(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "Bearer abc", header)
}
