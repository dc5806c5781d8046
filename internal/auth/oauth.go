package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/turnpage/turnpage/internal/member"
)

// OAuth client errors.
var (
	ErrExchangeFailed = errors.New("auth: code exchange failed")
	ErrNotLoggedIn    = errors.New("auth: no current member")
)

// oauthTimeout bounds calls to the identity provider.
const oauthTimeout = 10 * time.Second

// OAuthClient talks to the external identity provider: issuing the
// authorization URL, exchanging a callback code for tokens, and resolving
// the currently logged-in member.
type OAuthClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
}

// NewOAuthClient creates an OAuthClient for the provider at baseURL.
func NewOAuthClient(baseURL, clientID, clientSecret, redirectURL string) *OAuthClient {
	return &OAuthClient{
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   &http.Client{Timeout: oauthTimeout},
	}
}

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func (c *OAuthClient) WithHTTPClient(hc *http.Client) *OAuthClient {
	c.httpClient = hc
	return c
}

// AuthorizationURL returns the provider URL to redirect a member to,
// carrying state for CSRF protection.
func (c *OAuthClient) AuthorizationURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURL)
	q.Set("state", state)
	return c.baseURL + "/oauth/authorize?" + q.Encode()
}

// TokenResponse is the provider's token payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ExchangeCode trades a callback authorization code for member tokens.
func (c *OAuthClient) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("redirect_uri", c.redirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("auth: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("%w: status %d: %s", ErrExchangeFailed, resp.StatusCode, string(snippet))
	}

	var tokens TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrExchangeFailed, err)
	}
	if tokens.AccessToken == "" {
		return nil, ErrExchangeFailed
	}
	return &tokens, nil
}

// CurrentMember resolves the member a provider access token belongs to.
func (c *OAuthClient) CurrentMember(ctx context.Context, accessToken string) (*member.Member, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/oauth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("auth: build member request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotLoggedIn, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrNotLoggedIn
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrNotLoggedIn, resp.StatusCode)
	}

	var payload struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrNotLoggedIn, err)
	}
	if payload.ID == "" {
		return nil, ErrNotLoggedIn
	}

	return &member.Member{
		ID:       payload.ID,
		Email:    payload.Email,
		Nickname: payload.Nickname,
	}, nil
}
