package oauth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/viant/mcpcore/corerr"
)

// stateValidity is the window, per spec §4.E, during which a state value
// issued by BeginAuthorization may be redeemed by CompleteAuthorization.
const stateValidity = 10 * time.Minute

// Config is everything needed to run the authorization-code-with-PKCE
// flow against a discovered authorization server.
type Config struct {
	ClientID     string
	ClientSecret string // empty for public clients (the common MCP case)
	RedirectURL  string
	Scopes       []string

	AuthorizationEndpoint string
	TokenEndpoint         string

	HTTPClient *http.Client
}

// oauth2Config builds the golang.org/x/oauth2 config this package drives
// token exchange and refresh through.
func (c Config) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       c.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.AuthorizationEndpoint,
			TokenURL: c.TokenEndpoint,
		},
	}
}

// AuthorizationRequest is the outcome of BeginAuthorization: the URL the
// user must visit, and the PKCE/state values needed to complete the
// exchange once the redirect carries back an authorization code.
type AuthorizationRequest struct {
	URL         string
	Verifier    string
	State       string
	StateExpiry time.Time
}

// BeginAuthorization builds the authorization-request URL with a fresh PKCE
// challenge and state value, the latter valid for stateValidity.
func BeginAuthorization(cfg Config) (*AuthorizationRequest, error) {
	pkce, err := NewPKCE()
	if err != nil {
		return nil, err
	}
	state, err := newState()
	if err != nil {
		return nil, err
	}
	authURL := cfg.oauth2Config().AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", pkce.Challenge),
		oauth2.SetAuthURLParam("code_challenge_method", pkce.Method),
	)
	return &AuthorizationRequest{
		URL:         authURL,
		Verifier:    pkce.Verifier,
		State:       state,
		StateExpiry: time.Now().Add(stateValidity),
	}, nil
}

// ValidateState checks a callback's state parameter against the one issued
// by BeginAuthorization, per spec §4.E: a constant-time comparison rejected
// outright once the stateValidity window has elapsed, guarding against
// authorization-code injection from a stale or forged callback.
func ValidateState(issued *AuthorizationRequest, callbackState string) error {
	if issued == nil {
		return corerr.New(corerr.KindOAuth, "oauth", "no authorization request in flight")
	}
	if time.Now().After(issued.StateExpiry) {
		return corerr.New(corerr.KindOAuth, "oauth", "state parameter expired")
	}
	if subtle.ConstantTimeCompare([]byte(issued.State), []byte(callbackState)) != 1 {
		return corerr.New(corerr.KindOAuth, "oauth", "state parameter mismatch")
	}
	return nil
}

// CompleteAuthorization validates the callback's state against issued
// before exchanging the authorization code for a token, per spec §4.E.
func CompleteAuthorization(ctx context.Context, cfg Config, issued *AuthorizationRequest, callbackState, code string) (*Client, error) {
	if err := ValidateState(issued, callbackState); err != nil {
		return nil, err
	}
	return Exchange(ctx, cfg, code, issued.Verifier)
}

// Client holds a live token and refreshes it on demand, implementing the
// streamable transport's Authorizer hook.
type Client struct {
	cfg Config

	mu     sync.Mutex
	source oauth2.TokenSource
}

// Exchange completes the authorization-code flow, trading code and the
// verifier from BeginAuthorization for an initial token.
func Exchange(ctx context.Context, cfg Config, code, verifier string) (*Client, error) {
	httpCtx := ctx
	if cfg.HTTPClient != nil {
		httpCtx = context.WithValue(ctx, oauth2.HTTPClient, cfg.HTTPClient)
	}
	token, err := cfg.oauth2Config().Exchange(httpCtx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "authorization code exchange failed", err)
	}
	return newClient(httpCtx, cfg, token), nil
}

// FromToken wraps an already-obtained token (e.g. restored from storage),
// letting it refresh itself as needed.
func FromToken(ctx context.Context, cfg Config, token *oauth2.Token) *Client {
	return newClient(ctx, cfg, token)
}

func newClient(ctx context.Context, cfg Config, token *oauth2.Token) *Client {
	return &Client{cfg: cfg, source: cfg.oauth2Config().TokenSource(ctx, token)}
}

// Authorize returns the Authorization header value for the current,
// possibly-just-refreshed access token. Satisfies
// transport/client/http/streamable.Authorizer.
func (c *Client) Authorize(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, err := c.source.Token()
	if err != nil {
		return "", corerr.Wrap(corerr.KindOAuth, "oauth", "token refresh failed", err)
	}
	return fmt.Sprintf("%s %s", token.TokenType, token.AccessToken), nil
}

// Token returns the current access token, refreshing it first if expired.
func (c *Client) Token() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	token, err := c.source.Token()
	if err != nil {
		return nil, corerr.Wrap(corerr.KindOAuth, "oauth", "token refresh failed", err)
	}
	return token, nil
}
