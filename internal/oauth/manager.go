package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"brainlift-mcp/pkg/logging"
)

const subsystem = "OAuth"

// DefaultScopes is the scope set requested from the identity provider.
// The openid scope is what makes the provider issue an ID token, which the
// secondary token exchange prefers as its identity assertion.
var DefaultScopes = []string{
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
}

// googleRevokeURL is Google's OAuth token revocation endpoint.
const googleRevokeURL = "https://oauth2.googleapis.com/revoke"

// DefaultHTTPTimeout is the timeout applied to token endpoint calls.
const DefaultHTTPTimeout = 30 * time.Second

// Manager produces a valid Credential using cache-then-refresh-then-
// interactive-flow precedence, and owns the in-memory credential between
// calls. It is safe for concurrent use.
type Manager struct {
	mu           sync.Mutex
	store        *CredentialStore
	secretsPath  string
	scopes       []string
	callbackPort int
	httpClient   *http.Client
	openBrowser  func(string) error
	revokeURL    string
	cred         *Credential
}

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// ClientSecretsPath is the path to the provider client-secrets JSON
	// file used by the interactive flow.
	ClientSecretsPath string

	// Store persists the credential between runs.
	Store *CredentialStore

	// Scopes overrides DefaultScopes when non-empty.
	Scopes []string

	// CallbackPort is the fixed port of the local redirect listener.
	CallbackPort int

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client

	// OpenBrowser overrides the browser launcher, mainly for tests.
	OpenBrowser func(string) error
}

// NewManager creates a credential manager.
func NewManager(cfg ManagerConfig) *Manager {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	openBrowser := cfg.OpenBrowser
	if openBrowser == nil {
		openBrowser = OpenBrowser
	}

	return &Manager{
		store:        cfg.Store,
		secretsPath:  cfg.ClientSecretsPath,
		scopes:       scopes,
		callbackPort: cfg.CallbackPort,
		httpClient:   httpClient,
		openBrowser:  openBrowser,
		revokeURL:    googleRevokeURL,
	}
}

// GetCredentials returns a valid credential, acquiring one if necessary.
//
// Precedence: the in-memory credential, then the on-disk record, then a
// refresh against the token endpoint, then the interactive authorization
// flow. Load and refresh failures are logged and treated as "no credential
// yet"; only a failure of the interactive flow itself is returned. Callers
// must treat any returned error as authentication being unavailable.
//
// The interactive flow blocks on user action in the browser, so this must
// not be called on a latency-sensitive path without surfacing that to the
// caller.
func (m *Manager) GetCredentials(ctx context.Context) (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred.Valid() {
		return m.cred, nil
	}

	if m.cred == nil {
		cred, err := m.store.Load()
		if err != nil {
			logging.Warn(subsystem, "Ignoring unreadable credential file %s: %v", m.store.Path(), err)
			cred = nil
		}
		m.cred = cred
	}

	if m.cred != nil && m.cred.Expired() && m.cred.RefreshToken != "" {
		refreshed, err := m.refresh(ctx, m.cred)
		if err != nil {
			logging.Warn(subsystem, "Credential refresh failed, falling back to interactive flow: %v", err)
			m.cred = nil
		} else {
			m.cred = refreshed
			if err := m.store.Save(m.cred); err != nil {
				logging.Warn(subsystem, "Failed to persist refreshed credential: %v", err)
			}
			return m.cred, nil
		}
	}

	if !m.cred.Valid() {
		logging.Info(subsystem, "No valid credential, starting interactive authorization flow")
		cred, err := m.runInteractiveFlow(ctx)
		if err != nil {
			return nil, err
		}
		m.cred = cred
		if err := m.store.Save(m.cred); err != nil {
			logging.Warn(subsystem, "Failed to persist credential: %v", err)
		}
	}

	return m.cred, nil
}

// Revoke revokes the credential with the provider on a best-effort basis,
// then unconditionally deletes the stored record and clears the in-memory
// credential.
func (m *Manager) Revoke(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cred := m.cred
	if cred == nil {
		loaded, err := m.store.Load()
		if err != nil {
			logging.Debug(subsystem, "No stored credential to revoke: %v", err)
		}
		cred = loaded
	}

	if cred != nil && cred.AccessToken != "" {
		if err := m.revokeRemote(ctx, cred.AccessToken); err != nil {
			logging.Warn(subsystem, "Provider revocation failed (continuing with local delete): %v", err)
		}
	}

	m.cred = nil
	return m.store.Delete()
}

// refresh renews an expired credential via the refresh-token grant.
func (m *Manager) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred.TokenURI == "" {
		return nil, errors.New("credential has no token endpoint")
	}

	conf := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Scopes:       cred.Scopes,
		Endpoint:     oauth2.Endpoint{TokenURL: cred.TokenURI},
	}

	ctx, cancel := context.WithTimeout(m.withHTTPClient(ctx), DefaultHTTPTimeout)
	defer cancel()

	tok, err := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return nil, err
	}

	refreshed := fromOAuth2Token(tok, conf)
	// Providers may omit fields on refresh; keep what we already have.
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	if refreshed.IDToken == "" {
		refreshed.IDToken = cred.IDToken
	}

	logging.Debug(subsystem, "Refreshed credential, expiry %s", refreshed.Expiry.Format(time.RFC3339))
	return refreshed, nil
}

// runInteractiveFlow runs the authorization-code flow: start the local
// redirect listener, open the consent page, block for the single callback,
// then exchange the code for tokens.
func (m *Manager) runInteractiveFlow(ctx context.Context) (*Credential, error) {
	data, err := os.ReadFile(m.secretsPath)
	if err != nil {
		return nil, fmt.Errorf("client secrets file not available at %s: %w", m.secretsPath, err)
	}

	conf, err := google.ConfigFromJSON(data, m.scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets file: %w", err)
	}

	flowCtx, cancel := context.WithTimeout(ctx, CallbackTimeout)
	defer cancel()

	callbackServer := NewCallbackServer(m.callbackPort)
	redirectURI, err := callbackServer.Start(flowCtx)
	if err != nil {
		return nil, err
	}
	defer callbackServer.Stop()

	conf.RedirectURL = redirectURI

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	logging.Info(subsystem, "Please visit this URL to authorize: %s", authURL)
	if err := m.openBrowser(authURL); err != nil {
		logging.Warn(subsystem, "Could not open browser automatically, open the URL manually: %v", err)
	}

	result, err := callbackServer.WaitForCallback(flowCtx)
	if err != nil {
		return nil, fmt.Errorf("authorization callback failed: %w", err)
	}

	if result.State != state {
		return nil, errors.New("state mismatch in authorization callback")
	}

	if result.IsError() {
		if result.ErrorDescription != "" {
			return nil, fmt.Errorf("authorization failed: %s - %s", result.Error, result.ErrorDescription)
		}
		return nil, fmt.Errorf("authorization failed: %s", result.Error)
	}

	tok, err := conf.Exchange(m.withHTTPClient(ctx), result.Code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	logging.Info(subsystem, "Authorization flow completed")
	return fromOAuth2Token(tok, conf), nil
}

// revokeRemote posts the token to the provider revocation endpoint.
func (m *Manager) revokeRemote(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultHTTPTimeout)
	defer cancel()

	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revocation endpoint returned status %d", resp.StatusCode)
	}

	logging.Info(subsystem, "Credential revoked with provider")
	return nil
}

// withHTTPClient makes the oauth2 package use the manager's HTTP client.
func (m *Manager) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
}
