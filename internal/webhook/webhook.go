// Package webhook posts JSON events to external endpoints such as the CRM
// and the chat backend.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"corysite/internal/validation"
)

// maxResponseBytes bounds how much of a reply is read back.
const maxResponseBytes = 1 << 20

// ErrBlockedURL is returned when the target fails outbound URL validation.
var ErrBlockedURL = errors.New("webhook URL not allowed")

// StatusError reports a non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook returned status %d", e.Code)
}

// Client posts JSON payloads with a per-request timeout.
type Client struct {
	http         *http.Client
	allowPrivate bool
	userAgent    string
}

// NewClient creates a webhook client. allowPrivate permits targets on
// private networks, which development setups need.
func NewClient(timeout time.Duration, allowPrivate bool) *Client {
	return &Client{
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		allowPrivate: allowPrivate,
		userAgent:    "Cory-Webhook/1.0",
	}
}

// Post sends payload as JSON and returns the response body of a 2xx reply.
func (c *Client) Post(ctx context.Context, url string, payload any) ([]byte, error) {
	if ok, msg := validation.ValidateOutboundURL(url, c.allowPrivate); !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlockedURL, msg)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(reply)}
	}
	return reply, nil
}
