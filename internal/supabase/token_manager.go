package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"brainlift-mcp/internal/oauth"
	"brainlift-mcp/pkg/logging"
)

const subsystem = "Supabase"

// TokenExpirySkew is subtracted from the nominal expiry reported by the
// exchange endpoint, so consumers never observe a token within the skew
// window of true expiry.
const TokenExpirySkew = 60 * time.Second

// DefaultHTTPTimeout bounds the exchange request.
const DefaultHTTPTimeout = 30 * time.Second

// identityProvider is the provider name sent with the exchange request.
const identityProvider = "google"

// CredentialSource yields the primary identity-provider credential used as
// the subject of the token exchange. *oauth.Manager satisfies it.
type CredentialSource interface {
	GetCredentials(ctx context.Context) (*oauth.Credential, error)
}

// TokenManager exchanges the primary credential's identity assertion for a
// Supabase access token and caches the result with its skew-adjusted
// expiry and the resolved user identity. There is exactly one live scoped
// token per process.
//
// The check-then-exchange sequence is guarded: the cached fields sit behind
// a RWMutex, and concurrent misses collapse into a single exchange call via
// singleflight.
type TokenManager struct {
	creds      CredentialSource
	baseURL    string
	anonKey    string
	httpClient *http.Client
	now        func() time.Time

	group singleflight.Group

	mu        sync.RWMutex
	token     string
	expiresAt time.Time // zero means no known expiry
	userID    string
	gen       uint64 // bumped by Invalidate; stale exchanges must not cache
}

// TokenManagerConfig configures a TokenManager.
type TokenManagerConfig struct {
	// Credentials supplies the primary credential.
	Credentials CredentialSource

	// SupabaseURL is the base URL of the Supabase project.
	SupabaseURL string

	// AnonKey is the public API key sent as the apikey header.
	AnonKey string

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// NewTokenManager creates a token manager.
func NewTokenManager(cfg TokenManagerConfig) (*TokenManager, error) {
	if cfg.SupabaseURL == "" || cfg.AnonKey == "" {
		return nil, fmt.Errorf("supabase URL and anon key must be set")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credential source must be set")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	return &TokenManager{
		creds:      cfg.Credentials,
		baseURL:    strings.TrimRight(cfg.SupabaseURL, "/"),
		anonKey:    cfg.AnonKey,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// GetToken returns a Supabase access token, performing a fresh exchange
// only when no cached token is live. A cached token is returned without any
// network call.
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	v, err, _ := m.group.Do("token", func() (interface{}, error) {
		// Another caller may have finished the exchange while this one
		// waited on the flight group.
		if token, ok := m.cached(); ok {
			return token, nil
		}
		return m.exchange(ctx)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// GetUserID returns the authenticated user's Supabase identity, performing
// one exchange as a side effect when nothing is cached yet.
func (m *TokenManager) GetUserID(ctx context.Context) (string, error) {
	m.mu.RLock()
	userID := m.userID
	m.mu.RUnlock()
	if userID != "" {
		return userID, nil
	}

	if _, err := m.GetToken(ctx); err != nil {
		return "", err
	}

	m.mu.RLock()
	userID = m.userID
	m.mu.RUnlock()
	if userID == "" {
		return "", ErrMissingIdentity
	}
	return userID, nil
}

// Invalidate clears the cached token, expiry, and user identity, forcing
// the next GetToken to perform a fresh exchange.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	logging.Info(subsystem, "Invalidating cached access token")
	m.token = ""
	m.expiresAt = time.Time{}
	m.userID = ""
	m.gen++
}

// cached returns the live cached token, if any. A token with zero expiry
// never expires for caching purposes; stale-token detection is left to
// downstream 401 handling.
func (m *TokenManager) cached() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.token == "" {
		return "", false
	}
	if !m.expiresAt.IsZero() && !m.now().Before(m.expiresAt) {
		return "", false
	}
	return m.token, true
}

// exchangeResponse is the relevant subset of the Supabase token grant
// response.
type exchangeResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
	User        struct {
		ID string `json:"id"`
	} `json:"user"`
}

// exchange trades the primary credential's identity assertion for a
// Supabase access token and caches the result.
func (m *TokenManager) exchange(ctx context.Context) (string, error) {
	m.mu.RLock()
	gen := m.gen
	m.mu.RUnlock()

	cred, err := m.creds.GetCredentials(ctx)
	if err != nil {
		return "", &AuthUnavailableError{Err: err}
	}

	assertion := cred.IDToken
	if assertion == "" {
		// Degraded-compatibility path for providers that never populate
		// an ID token. The target may reject a raw access token if it
		// verifies token format.
		logging.Warn(subsystem, "Credential has no ID token, falling back to access token for exchange")
		assertion = cred.AccessToken
	}

	endpoint := m.baseURL + "/auth/v1/token?grant_type=id_token"
	payload, err := json.Marshal(map[string]string{
		"id_token": assertion,
		"provider": identityProvider,
	})
	if err != nil {
		return "", &ExchangeFailedError{Detail: "failed to encode exchange request", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultHTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &ExchangeFailedError{Detail: "failed to build exchange request", Err: err}
	}
	req.Header.Set("apikey", m.anonKey)
	req.Header.Set("Content-Type", "application/json")

	logging.Debug(subsystem, "Exchanging identity assertion at %s", endpoint)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", &ExchangeFailedError{Detail: "exchange request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ExchangeFailedError{Status: resp.StatusCode, Detail: "failed to read exchange response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ExchangeFailedError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	var parsed exchangeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ExchangeFailedError{Status: resp.StatusCode, Detail: "malformed exchange response", Err: err}
	}

	if parsed.AccessToken == "" {
		return "", &ExchangeFailedError{Status: resp.StatusCode, Detail: "exchange response missing access_token"}
	}

	var expiresAt time.Time
	if seconds, err := parsed.ExpiresIn.Float64(); err == nil && seconds > 0 {
		expiresAt = m.now().Add(time.Duration(seconds)*time.Second - TokenExpirySkew)
	}

	m.mu.Lock()
	// An Invalidate that landed while this exchange was in flight must win:
	// the stale result is returned to the caller but never cached.
	if m.gen == gen {
		m.token = parsed.AccessToken
		m.expiresAt = expiresAt
		m.userID = parsed.User.ID
	}
	m.mu.Unlock()

	if expiresAt.IsZero() {
		logging.Debug(subsystem, "Obtained access token with no expiry")
	} else {
		logging.Debug(subsystem, "Obtained access token, expires at %s (skew-adjusted)", expiresAt.Format(time.RFC3339))
	}

	return parsed.AccessToken, nil
}
