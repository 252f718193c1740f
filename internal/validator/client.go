package validator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
)

type ErrorKind string

const (
	KindTimeout ErrorKind = "timeout"
	KindOther   ErrorKind = "other"
)

// Error is a classified failure of the outbound call. Upstream non-2xx
// responses are not errors.
type Error struct {
	Kind    ErrorKind
	Timeout time.Duration
	Err     error
}

func (e *Error) Error() string {
	if e.Kind == KindTimeout {
		return fmt.Sprintf("validator request timed out after %s", e.Timeout)
	}
	return fmt.Sprintf("validator request failed: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client calls the external validation endpoint. No retries.
type Client struct {
	endpoint     string
	timeout      time.Duration
	maxBodyBytes int64
	http         *http.Client
}

func NewClient(endpoint string, timeout time.Duration, maxBodyBytes int64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	return &Client{
		endpoint:     endpoint,
		timeout:      timeout,
		maxBodyBytes: maxBodyBytes,
		http:         &http.Client{},
	}
}

func (c *Client) Timeout() time.Duration { return c.timeout }

// Validate sends email and target as query parameters and returns the
// upstream response as received.
func (c *Client) Validate(ctx context.Context, email, target string) (*Response, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, &Error{Kind: KindOther, Err: fmt.Errorf("parse endpoint: %w", err)}
	}
	q := u.Query()
	q.Set("url", target)
	q.Set("email", email)
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindOther, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	defer resp.Body.Close()

	// one extra byte tells an exact-size body from an oversized one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, c.classify(ctx, err)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, &Error{Kind: KindOther, Err: fmt.Errorf("response body exceeds %d bytes", c.maxBodyBytes)}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) classify(ctx context.Context, err error) error {
	// deadline from our own timeout, not a canceled parent
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Timeout: c.timeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Timeout: c.timeout, Err: err}
	}
	return &Error{Kind: KindOther, Err: err}
}
