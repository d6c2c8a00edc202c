// Package auth performs the OAuth2 token exchanges that authorize
// directory API calls. Tokens are fetched exactly once at construction
// and are immutable afterwards; a construction failure means no client
// may be built on top (fail closed).
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/dirkit/internal/common"
	"github.com/bobmcallan/dirkit/internal/interfaces"
)

const (
	DefaultTokenURL = "https://oauth2.googleapis.com/token"
	DefaultTimeout  = 30 * time.Second
)

// AuthError represents a rejected token exchange. It is fatal: the
// caller must not retry with the same credentials.
type AuthError struct {
	Code        string // OAuth error code, e.g. "invalid_grant"
	Description string
}

func (e *AuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("token exchange rejected: %s (%s)", e.Code, e.Description)
	}
	return fmt.Sprintf("token exchange rejected: %s", e.Code)
}

// tokenResponse is the token endpoint's JSON body. On rejection the
// endpoint returns Error/ErrorDescription instead of AccessToken.
type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Authenticator exchanges a long-lived refresh token for an access token
// at construction time and exposes it read-only.
type Authenticator struct {
	tokenURL   string
	httpClient *http.Client
	logger     *common.Logger

	token string // set once in NewAuthenticator, never reassigned
}

// Option configures an Authenticator before the exchange runs.
type Option func(*Authenticator)

// WithTokenURL sets the token endpoint URL
func WithTokenURL(tokenURL string) Option {
	return func(a *Authenticator) {
		a.tokenURL = tokenURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(a *Authenticator) {
		a.logger = logger
	}
}

// WithTimeout sets the HTTP timeout for the exchange
func WithTimeout(timeout time.Duration) Option {
	return func(a *Authenticator) {
		a.httpClient.Timeout = timeout
	}
}

// NewAuthenticator performs a single refresh-grant exchange and returns
// an Authenticator holding the resulting access token. The exchange is
// never retried and the token is never renewed: when it expires or is
// revoked upstream, subsequent API calls fail with an authentication
// error and the caller must construct a new Authenticator.
func NewAuthenticator(ctx context.Context, clientID, clientSecret, refreshToken string, opts ...Option) (*Authenticator, error) {
	a := &Authenticator{
		tokenURL: DefaultTokenURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(a)
	}

	// The token endpoint expects a form-encoded body, not JSON.
	form := url.Values{}
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	token, err := a.exchange(ctx, form)
	if err != nil {
		return nil, err
	}

	a.token = token
	a.logger.Info().Msg("Access token obtained")
	return a, nil
}

// Token returns the access token obtained at construction.
func (a *Authenticator) Token() string {
	return a.token
}

// exchange posts the grant parameters to the token endpoint and parses
// the response. An error envelope in the body is an AuthError; anything
// preventing a parseable response is a transport error.
func (a *Authenticator) exchange(ctx context.Context, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	a.logger.Debug().Str("grant_type", form.Get("grant_type")).Msg("Token exchange request")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if tr.Error != "" {
		a.logger.Error().Str("error", tr.Error).Msg("Token exchange rejected")
		return "", &AuthError{Code: tr.Error, Description: tr.ErrorDescription}
	}

	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token (status %d)", resp.StatusCode)
	}

	return tr.AccessToken, nil
}

// Ensure Authenticator implements TokenSource
var _ interfaces.TokenSource = (*Authenticator)(nil)
