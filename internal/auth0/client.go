// Package auth0 is a thin pass-through to the Auth0 Management API used to
// look up a user's upstream identity-provider access token.
package auth0

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Errors returned by the client.
var (
	ErrUserNotFound     = errors.New("auth0 user not found")
	ErrNoIdentityToken  = errors.New("no IdP access token found")
	ErrInvalidConfig    = errors.New("invalid auth0 config")
	ErrManagementAPI    = errors.New("auth0 management api request failed")
	ErrTokenUnavailable = errors.New("auth0 management token unavailable")
)

// Config carries the Management API credentials.
type Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
}

// Enabled reports whether the credentials are present. An unconfigured client
// disables the pass-through endpoint rather than failing startup.
func (cfg Config) Enabled() bool {
	return strings.TrimSpace(cfg.Domain) != "" &&
		strings.TrimSpace(cfg.ClientID) != "" &&
		strings.TrimSpace(cfg.ClientSecret) != ""
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for Auth0 calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(client *Client) {
		if httpClient != nil {
			client.httpClient = httpClient
		}
	}
}

// WithBaseURL overrides the tenant base URL derived from the domain.
func WithBaseURL(baseURL string) Option {
	return func(client *Client) {
		if baseURL != "" {
			client.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// Client calls the Auth0 Management API with a cached client-credentials
// token.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	nowFn        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// New wires a Client from credentials.
func New(cfg Config, options ...Option) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("%w: domain, client id, and client secret are required", ErrInvalidConfig)
	}
	client := &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseURL:      "https://" + strings.TrimRight(cfg.Domain, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		nowFn:        func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		if option != nil {
			option(client)
		}
	}
	return client, nil
}

type managementUser struct {
	Identities []struct {
		AccessToken string `json:"access_token"`
	} `json:"identities"`
}

// IdentityProviderToken returns the upstream IdP access token recorded on the
// user's first identity, or ErrNoIdentityToken when none is present.
func (client *Client) IdentityProviderToken(ctx context.Context, userID string) (string, error) {
	managementToken, err := client.managementToken(ctx)
	if err != nil {
		return "", err
	}

	endpoint := client.baseURL + "/api/v2/users/" + url.PathEscape(userID)
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrManagementAPI, err)
	}
	request.Header.Set("Authorization", "Bearer "+managementToken)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrManagementAPI, err)
	}
	defer func() { _ = response.Body.Close() }()

	switch {
	case response.StatusCode == http.StatusNotFound:
		return "", ErrUserNotFound
	case response.StatusCode != http.StatusOK:
		return "", fmt.Errorf("%w: status %d", ErrManagementAPI, response.StatusCode)
	}

	var user managementUser
	if err := json.NewDecoder(response.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("%w: decode user: %v", ErrManagementAPI, err)
	}
	if len(user.Identities) == 0 || user.Identities[0].AccessToken == "" {
		return "", ErrNoIdentityToken
	}
	return user.Identities[0].AccessToken, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// managementToken returns the cached client-credentials token, refreshing it
// when the cached one is within a minute of expiry.
func (client *Client) managementToken(ctx context.Context) (string, error) {
	client.mu.Lock()
	defer client.mu.Unlock()

	now := client.nowFn()
	if client.token != "" && now.Before(client.tokenExpiry.Add(-time.Minute)) {
		return client.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", client.clientID)
	form.Set("client_secret", client.clientSecret)
	form.Set("audience", client.baseURL+"/api/v2/")

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrTokenUnavailable, response.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(response.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrTokenUnavailable, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenUnavailable)
	}

	client.token = token.AccessToken
	client.tokenExpiry = tokenExpiry(token, now)
	return client.token, nil
}

// tokenExpiry prefers the exp claim embedded in the token itself; the client
// holds the token rather than verifying it, so an unverified parse suffices.
// Falls back to expires_in when the token is not a parseable JWT.
func tokenExpiry(token tokenResponse, now time.Time) time.Time {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token.AccessToken, claims); err == nil {
		if expiresAt, err := claims.GetExpirationTime(); err == nil && expiresAt != nil {
			return expiresAt.Time
		}
	}
	if token.ExpiresIn > 0 {
		return now.Add(time.Duration(token.ExpiresIn) * time.Second)
	}
	return now
}
