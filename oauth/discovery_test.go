package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscoverAuthorizationServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/oauth-authorization-server" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(AuthorizationServerMetadata{
			Issuer:        "https://auth.example.com",
			TokenEndpoint: "https://auth.example.com/token",
		})
	}))
	defer server.Close()

	meta, err := DiscoverAuthorizationServer(context.Background(), server.Client(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, "https://auth.example.com/token", meta.TokenEndpoint)
}

func TestDiscoverProtectedResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/.well-known/oauth-protected-resource", r.URL.Path)
		_ = json.NewEncoder(w).Encode(ProtectedResourceMetadata{
			Resource:             "https://mcp.example.com",
			AuthorizationServers: []string{"https://auth.example.com"},
		})
	}))
	defer server.Close()

	meta, err := DiscoverProtectedResource(context.Background(), server.Client(), server.URL)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://auth.example.com"}, meta.AuthorizationServers)
}
