package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// The provider is a slow, untrusted third party; never let an initiate call
// hang a request handler for longer than this.
const requestTimeout = 8 * time.Second

var (
	// ErrNotConfigured means the API URL or key is missing from the
	// environment. Misconfiguration, not a user error.
	ErrNotConfigured = errors.New("mpesa: gateway credentials not configured")
	// ErrGatewayUnreachable means the HTTP exchange itself failed (DNS,
	// connect, timeout). The push may or may not have been delivered, so
	// callers must not record a definitive failure.
	ErrGatewayUnreachable = errors.New("mpesa: gateway unreachable")
)

// ProviderResult is the tolerantly-decoded outcome of a gateway call. The
// provider returns valid JSON, malformed JSON or an empty body depending on
// which of its failure paths fired; Parsed is nil whenever the body was not a
// JSON object and Raw always carries the verbatim text.
type ProviderResult struct {
	StatusCode int
	Parsed     map[string]interface{}
	Raw        string
}

// OK reports whether the provider answered with a 2xx status.
func (r *ProviderResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type PushRequest struct {
	Phone             string                 `json:"phone"`
	Amount            int64                  `json:"amount"`
	ExternalReference string                 `json:"external_reference,omitempty"`
	CallbackURL       string                 `json:"callback_url,omitempty"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

type Client struct {
	baseURL     string
	apiKey      string
	callbackURL string
	httpClient  *http.Client
}

// NewClientFromEnv builds a client from MPESA_API_URL / MPESA_API_KEY /
// MPESA_CALLBACK_URL. Returns ErrNotConfigured when either of the first two
// is missing.
func NewClientFromEnv() (*Client, error) {
	baseURL := os.Getenv("MPESA_API_URL")
	apiKey := os.Getenv("MPESA_API_KEY")
	if baseURL == "" || apiKey == "" {
		return nil, ErrNotConfigured
	}
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		callbackURL: os.Getenv("MPESA_CALLBACK_URL"),
		httpClient:  &http.Client{Timeout: requestTimeout},
	}, nil
}

// NewClient is used by tests to point at a stub gateway.
func NewClient(baseURL, apiKey, callbackURL string) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
	}
}

// InitiatePush asks the aggregator to fire an STK push at the subscriber's
// phone. A non-2xx response is still a ProviderResult, not an error; only a
// failed HTTP exchange returns ErrGatewayUnreachable. Nothing is persisted
// here.
func (c *Client) InitiatePush(ctx context.Context, push PushRequest) (*ProviderResult, error) {
	if push.CallbackURL == "" {
		push.CallbackURL = c.callbackURL
	}

	body, err := json.Marshal(push)
	if err != nil {
		return nil, fmt.Errorf("mpesa: encode push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/stk-push", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("mpesa: build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req)
}

// QueryStatus asks the aggregator for the current state of a previously
// initiated transaction. Same tolerant-parsing contract as InitiatePush.
func (c *Client) QueryStatus(ctx context.Context, reference string) (*ProviderResult, error) {
	statusURL := fmt.Sprintf("%s/transaction-status?reference=%s", c.baseURL, url.QueryEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("mpesa: build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*ProviderResult, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrGatewayUnreachable, err)
	}

	result := &ProviderResult{StatusCode: resp.StatusCode, Raw: string(raw)}

	var parsed map[string]interface{}
	if json.Unmarshal(raw, &parsed) == nil {
		result.Parsed = parsed
	}
	return result, nil
}
