package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/dirkit/internal/common"
)

const (
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// DefaultScope grants read/write access to users and groups.
	DefaultScope = "https://www.googleapis.com/auth/admin.directory.user https://www.googleapis.com/auth/admin.directory.group"

	assertionLifetime = time.Hour
)

// ServiceAccountCredentials holds the inputs for a JWT-bearer exchange.
type ServiceAccountCredentials struct {
	Email       string // service account email (assertion issuer)
	PrivateKey  []byte // PEM-encoded RSA private key
	Impersonate string // admin user to act as; required for directory admin scopes
	Scope       string // space-separated scopes; DefaultScope when empty
}

// NewServiceAccountAuthenticator signs an RS256 assertion with the service
// account key and exchanges it at the token endpoint. Same single-fetch,
// fail-closed semantics as NewAuthenticator: a rejected exchange returns
// an AuthError and no token is ever held.
func NewServiceAccountAuthenticator(ctx context.Context, creds ServiceAccountCredentials, opts ...Option) (*Authenticator, error) {
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

	assertion, err := signAssertion(creds, a.tokenURL)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	token, err := a.exchange(ctx, form)
	if err != nil {
		return nil, err
	}

	a.token = token
	a.logger.Info().Str("service_account", creds.Email).Msg("Access token obtained")
	return a, nil
}

// signAssertion builds and signs the JWT assertion for the bearer grant.
func signAssertion(creds ServiceAccountCredentials, audience string) (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(creds.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to parse service account key: %w", err)
	}

	scope := strings.TrimSpace(creds.Scope)
	if scope == "" {
		scope = DefaultScope
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   creds.Email,
		"scope": scope,
		"aud":   audience,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionLifetime).Unix(),
	}
	if creds.Impersonate != "" {
		claims["sub"] = creds.Impersonate
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}

	return signed, nil
}
