package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterClient_DefaultsAndResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ClientRegistrationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "none", req.TokenEndpointAuthMethod)
		assert.Equal(t, []string{"authorization_code", "refresh_token"}, req.GrantTypes)
		assert.Equal(t, []string{"code"}, req.ResponseTypes)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(ClientRegistrationResponse{ClientID: "generated-id"})
	}))
	defer srv.Close()

	meta := &AuthorizationServerMetadata{RegistrationEndpoint: srv.URL}
	resp, err := RegisterClient(context.Background(), srv.Client(), meta, ClientRegistrationRequest{ClientName: "mcpcore"})
	assert.NoError(t, err)
	assert.Equal(t, "generated-id", resp.ClientID)
}

func TestRegisterClient_NoEndpoint(t *testing.T) {
	_, err := RegisterClient(context.Background(), nil, &AuthorizationServerMetadata{}, ClientRegistrationRequest{})
	assert.Error(t, err)
}
