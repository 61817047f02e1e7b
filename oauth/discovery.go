// Package oauth implements the client-side half of MCP's OAuth 2.0
// authorization flow from spec §4.E: RFC 8414 authorization-server
// metadata discovery, RFC 9728 protected-resource metadata discovery, PKCE
// (RFC 7636, S256 only), RFC 7591 dynamic client registration, and token
// refresh.
//
// No MCP-aware OAuth implementation appears anywhere in the retrieved
// corpus (see DESIGN.md); the token-exchange/refresh shape is grounded on
// golang.org/x/oauth2's Config/Token types, with the discovery and dynamic
// registration layered on top since x/oauth2 implements neither.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/viant/mcpcore/corerr"
)

// AuthorizationServerMetadata is the subset of RFC 8414's authorization
// server metadata document this client consumes.
type AuthorizationServerMetadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported,omitempty"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
}

// ProtectedResourceMetadata is RFC 9728's resource metadata document,
// naming the authorization server(s) that protect an MCP server's resource.
type ProtectedResourceMetadata struct {
	Resource             string   `json:"resource"`
	AuthorizationServers []string `json:"authorization_servers"`
	ScopesSupported      []string `json:"scopes_supported,omitempty"`
}

// DiscoverProtectedResource fetches RFC 9728 metadata from
// resourceURL/.well-known/oauth-protected-resource. This is the entry
// point when all the client has is the MCP server's base URL.
func DiscoverProtectedResource(ctx context.Context, httpClient *http.Client, resourceURL string) (*ProtectedResourceMetadata, error) {
	wellKnown, err := joinWellKnown(resourceURL, "oauth-protected-resource")
	if err != nil {
		return nil, err
	}
	var meta ProtectedResourceMetadata
	if err := getJSON(ctx, httpClient, wellKnown, &meta); err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "failed to discover protected resource metadata", err)
	}
	return &meta, nil
}

// DiscoverAuthorizationServer fetches RFC 8414 metadata from
// issuer/.well-known/oauth-authorization-server, falling back to the
// OpenID-Connect discovery path when the former fails for any reason
// (transport error, non-200 status or undecodable body), since several
// authorization servers only publish the latter.
func DiscoverAuthorizationServer(ctx context.Context, httpClient *http.Client, issuer string) (*AuthorizationServerMetadata, error) {
	oauthURL, err := joinWellKnown(issuer, "oauth-authorization-server")
	if err != nil {
		return nil, err
	}
	var meta AuthorizationServerMetadata
	err = getJSON(ctx, httpClient, oauthURL, &meta)
	if err == nil {
		return &meta, nil
	}

	oidcURL, oidcErr := joinWellKnown(issuer, "openid-configuration")
	if oidcErr != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "failed to discover authorization server metadata", err)
	}
	if err := getJSON(ctx, httpClient, oidcURL, &meta); err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "failed to discover authorization server metadata", err)
	}
	return &meta, nil
}

func joinWellKnown(base, name string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", corerr.Wrap(corerr.KindOAuth, "oauth", "invalid metadata base URL", err)
	}
	u.Path = "/.well-known/" + name
	return u.String(), nil
}

func getJSON(ctx context.Context, httpClient *http.Client, target string, out interface{}) error {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata fetch %s returned status %d", target, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
