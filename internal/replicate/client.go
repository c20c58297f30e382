// Package replicate is a minimal client for the Replicate prediction API.
// The server does not own the restoration computation; it only creates
// predictions and relays their state.
package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.replicate.com/v1"

// Status is the lifecycle state reported by the provider.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Prediction mirrors the provider's prediction resource. Input and Output are
// loosely typed on purpose; the server relays them untouched.
type Prediction struct {
	ID          string            `json:"id"`
	Model       string            `json:"model,omitempty"`
	Version     string            `json:"version,omitempty"`
	Status      Status            `json:"status"`
	Input       map[string]any    `json:"input,omitempty"`
	Output      any               `json:"output,omitempty"`
	Error       string            `json:"error,omitempty"`
	Logs        string            `json:"logs,omitempty"`
	CreatedAt   string            `json:"created_at,omitempty"`
	CompletedAt string            `json:"completed_at,omitempty"`
	URLs        map[string]string `json:"urls,omitempty"`
}

// Client calls the Replicate REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a Client authenticated with the given API token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateOptions carries optional parameters for prediction creation.
type CreateOptions struct {
	// Webhook is a URL the provider calls as the prediction progresses.
	Webhook             string
	WebhookEventsFilter []string
}

type createRequest struct {
	Input               map[string]any `json:"input"`
	Webhook             string         `json:"webhook,omitempty"`
	WebhookEventsFilter []string       `json:"webhook_events_filter,omitempty"`
}

// CreatePrediction starts a prediction against the given model
// ("owner/name") and returns the provider's initial job state.
func (c *Client) CreatePrediction(ctx context.Context, model string, input map[string]any, opts *CreateOptions) (*Prediction, error) {
	body := createRequest{Input: input}
	if opts != nil {
		body.Webhook = opts.Webhook
		body.WebhookEventsFilter = opts.WebhookEventsFilter
	}

	var prediction Prediction
	url := fmt.Sprintf("%s/models/%s/predictions", c.baseURL, model)
	if err := c.do(ctx, http.MethodPost, url, body, &prediction); err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}
	return &prediction, nil
}

// GetPrediction fetches the current state of a prediction.
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	var prediction Prediction
	url := fmt.Sprintf("%s/predictions/%s", c.baseURL, id)
	if err := c.do(ctx, http.MethodGet, url, nil, &prediction); err != nil {
		return nil, fmt.Errorf("get prediction %s: %w", id, err)
	}
	return &prediction, nil
}

// ErrWaitTimeout is returned by Wait when the prediction does not reach a
// terminal state within the configured bounds. It is distinct from a
// provider-reported failure, which arrives as a terminal prediction.
var ErrWaitTimeout = errors.New("prediction did not reach a terminal state in time")

// WaitOptions bounds the polling loop.
type WaitOptions struct {
	Interval    time.Duration
	MaxAttempts int
}

// Wait polls the prediction until it reaches a terminal state, the attempt
// budget runs out, or the context is cancelled. Polling is deliberately
// bounded; a stuck job surfaces ErrWaitTimeout instead of spinning forever.
func (c *Client) Wait(ctx context.Context, id string, opts WaitOptions) (*Prediction, error) {
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	attempts := opts.MaxAttempts
	if attempts <= 0 {
		attempts = 120
	}

	for i := 0; i < attempts; i++ {
		prediction, err := c.GetPrediction(ctx, id)
		if err != nil {
			return nil, err
		}
		if prediction.Status.Terminal() {
			return prediction, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, ErrWaitTimeout
}

type apiError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func (c *Client) do(ctx context.Context, method, url string, in, out any) error {
	var reqBody *bytes.Buffer
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	} else {
		reqBody = &bytes.Buffer{}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call replicate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Detail != "" {
			return fmt.Errorf("replicate returned status %d: %s", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("replicate returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
