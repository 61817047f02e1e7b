package oauth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/viant/mcpcore/corerr"
)

// ClientRegistrationRequest is the RFC 7591 dynamic client registration
// request body. MCP clients register as public, PKCE-only clients - no
// client secret is requested.
type ClientRegistrationRequest struct {
	ClientName              string   `json:"client_name"`
	RedirectURIs            []string `json:"redirect_uris"`
	GrantTypes              []string `json:"grant_types"`
	ResponseTypes           []string `json:"response_types"`
	TokenEndpointAuthMethod string   `json:"token_endpoint_auth_method"`
	Scope                   string   `json:"scope,omitempty"`
}

// ClientRegistrationResponse is the subset of RFC 7591's response this
// client needs to proceed with the authorization code flow.
type ClientRegistrationResponse struct {
	ClientID              string `json:"client_id"`
	ClientSecret          string `json:"client_secret,omitempty"`
	ClientIDIssuedAt       int64  `json:"client_id_issued_at,omitempty"`
	ClientSecretExpiresAt  int64  `json:"client_secret_expires_at,omitempty"`
}

// RegisterClient performs RFC 7591 dynamic client registration against
// meta.RegistrationEndpoint, registering as a public client with no
// authentication method (PKCE carries the proof of possession instead).
func RegisterClient(ctx context.Context, httpClient *http.Client, meta *AuthorizationServerMetadata, req ClientRegistrationRequest) (*ClientRegistrationResponse, error) {
	if meta.RegistrationEndpoint == "" {
		return nil, corerr.New(corerr.KindOAuth, "oauth", "authorization server does not advertise a registration_endpoint")
	}
	if req.TokenEndpointAuthMethod == "" {
		req.TokenEndpointAuthMethod = "none"
	}
	if len(req.GrantTypes) == 0 {
		req.GrantTypes = []string{"authorization_code", "refresh_token"}
	}
	if len(req.ResponseTypes) == 0 {
		req.ResponseTypes = []string{"code"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "failed to marshal registration request", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, meta.RegistrationEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "failed to build registration request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "dynamic client registration request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, corerr.New(corerr.KindOAuth, "oauth", "dynamic client registration returned unexpected status")
	}

	var out ClientRegistrationResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "failed to decode registration response", err)
	}
	return &out, nil
}
