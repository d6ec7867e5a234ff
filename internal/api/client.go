// Package api provides the JSON client shared by the provider
// integrations. It separates transport from aggregation logic: callers get
// a request method wrapped in a retry policy and never see net/http
// directly.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultAttempts = 3
	defaultBackoff  = 2 * time.Second
)

// ErrStatus marks a non-transient provider response (4xx). It is returned
// without retrying.
var ErrStatus = errors.New("provider rejected request")

// Policy bounds the retry behaviour of a client. Transient failures
// (network errors, timeouts, 5xx responses, malformed bodies) are retried
// up to MaxAttempts with a fixed Backoff between attempts; the final
// failure propagates to the caller.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultPolicy matches the provider limits this system was built
// against: three attempts, two seconds apart, ten seconds per attempt.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: defaultAttempts, Backoff: defaultBackoff}
}

// Client is a policy-wrapped JSON API client bound to one provider base
// URL and credential set.
type Client struct {
	baseURL string
	header  http.Header
	httpc   *http.Client
	policy  Policy
}

// New builds a client for the given base URL. The header is sent with
// every request and normally carries the provider credential.
func New(baseURL string, header http.Header, policy Policy) *Client {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = defaultAttempts
	}
	if policy.Backoff <= 0 {
		policy.Backoff = defaultBackoff
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		header:  header,
		httpc:   &http.Client{Timeout: defaultTimeout},
		policy:  policy,
	}
}

// Request performs a JSON request against the provider, retrying
// transient failures per the client's policy. The returned bytes are
// guaranteed to be valid JSON.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		body, err := c.do(ctx, method, u)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrStatus) || ctx.Err() != nil {
			return nil, err
		}
		lastErr = err

		slog.WarnContext(ctx, "Provider request failed",
			"method", method,
			"path", path,
			"attempt", attempt,
			"max_attempts", c.policy.MaxAttempts,
			"error", err)

		if attempt < c.policy.MaxAttempts {
			select {
			case <-time.After(c.policy.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("%s %s after %d attempts: %w", method, path, c.policy.MaxAttempts, lastErr)
}

// GetJSON performs a GET and unmarshals the response into v.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, v any) error {
	body, err := c.Request(ctx, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("server error %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: status %d", ErrStatus, resp.StatusCode)
	}

	if !json.Valid(body) {
		return nil, errors.New("malformed response body")
	}
	return body, nil
}
