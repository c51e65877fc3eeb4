package brainlift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"brainlift-mcp/pkg/logging"
)

const subsystem = "BrainLift"

// RequestTimeout bounds every API read.
const RequestTimeout = 30 * time.Second

// restPrefix is the path prefix of the Supabase REST surface.
const restPrefix = "/rest/v1"

// TokenProvider yields the scoped bearer token and the resolved subject
// identity used to authenticate API reads. *supabase.TokenManager
// satisfies it.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
	GetUserID(ctx context.Context) (string, error)
}

// Client performs authenticated reads against the BrainLift API and
// normalizes failures into the package's error kinds. All operations are
// idempotent and side-effect-free on the server.
type Client struct {
	baseURL     string
	anonKey     string
	tokens      TokenProvider
	httpClient  *http.Client
	demoMode    bool
	ownerFilter bool
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the base URL of the BrainLift API.
	BaseURL string

	// AnonKey is the public API key sent as the apikey header.
	AnonKey string

	// Tokens supplies the scoped bearer token. It may be nil in demo
	// mode, which never acquires headers.
	Tokens TokenProvider

	// DemoMode serves fixed canned payloads without any network or
	// authentication calls.
	DemoMode bool

	// OwnerFilter scopes the list endpoint with an explicit user_id
	// filter instead of relying on the server-side ownership check.
	OwnerFilter bool

	// HTTPClient is an optional custom HTTP client.
	HTTPClient *http.Client
}

// NewClient creates a BrainLift API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if !cfg.DemoMode {
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("API base URL must be set")
		}
		if cfg.Tokens == nil {
			return nil, fmt.Errorf("token provider must be set")
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: RequestTimeout}
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:     cfg.AnonKey,
		tokens:      cfg.Tokens,
		httpClient:  httpClient,
		demoMode:    cfg.DemoMode,
		ownerFilter: cfg.OwnerFilter,
	}, nil
}

// ListBrainlifts fetches the caller's BrainLift collection, scoped to the
// authenticated user either by the server-side ownership check or, with
// OwnerFilter, by an explicit user_id filter.
func (c *Client) ListBrainlifts(ctx context.Context) ([]map[string]interface{}, error) {
	if c.demoMode {
		return demoBrainlifts(), nil
	}

	query := url.Values{}
	if c.ownerFilter {
		userID, err := c.tokens.GetUserID(ctx)
		if err != nil {
			return nil, err
		}
		query.Set("user_id", "eq."+userID)
	}

	var out []map[string]interface{}
	if err := c.get(ctx, restPrefix+"/brainlifts", query, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetBrainlift fetches one BrainLift record by identifier.
func (c *Client) GetBrainlift(ctx context.Context, id string) (map[string]interface{}, error) {
	if c.demoMode {
		return demoBrainlift(id), nil
	}

	var out map[string]interface{}
	if err := c.get(ctx, restPrefix+"/brainlifts/"+url.PathEscape(id), nil, id, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNodes fetches the ordered child nodes of one BrainLift.
func (c *Client) GetNodes(ctx context.Context, id string) ([]map[string]interface{}, error) {
	if c.demoMode {
		return demoNodes(), nil
	}

	var out []map[string]interface{}
	if err := c.get(ctx, restPrefix+"/brainlifts/"+url.PathEscape(id)+"/nodes", nil, id, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// headers acquires the authentication headers for an API read.
func (c *Client) headers(ctx context.Context) (http.Header, error) {
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	h.Set("apikey", c.anonKey)
	return h, nil
}

// get issues one authenticated GET and decodes the JSON response into out.
// The id parameter is carried into NotFound/Forbidden errors. Collection
// reads pass an empty id; a 404 or 403 there names no record, so it maps to
// RequestFailed instead.
func (c *Client) get(ctx context.Context, path string, query url.Values, id string, out interface{}) error {
	headers, err := c.headers(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &RequestFailedError{Detail: err.Error()}
	}
	req.Header = headers

	logging.Debug(subsystem, "GET %s", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RequestFailedError{Status: resp.StatusCode, Detail: err.Error()}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && id != "":
		return &NotFoundError{ID: id}
	case resp.StatusCode == http.StatusForbidden && id != "":
		return &ForbiddenError{ID: id}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &RequestFailedError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &RequestFailedError{Status: resp.StatusCode, Detail: fmt.Sprintf("malformed response body: %v", err)}
	}

	return nil
}

// mapTransportError normalizes a failed round trip: timeouts map to
// TimedOut, connection failures to Unreachable, anything else to a generic
// RequestFailed.
func (c *Client) mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimedOutError{Timeout: RequestTimeout}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &TimedOutError{Timeout: RequestTimeout}
		}
		return &UnreachableError{BaseURL: c.baseURL, Err: urlErr.Err}
	}

	return &RequestFailedError{Detail: err.Error()}
}
