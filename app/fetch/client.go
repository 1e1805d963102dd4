package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrTooManyRedirects        = errors.New("too many redirects")
	ErrRedirectWithoutLocation = errors.New("non-200 response without usable Location")
	ErrBodyStalled             = errors.New("response body stalled")
)

// StatusError reports a response status the caller could not act on.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d for %s", e.Code, e.URL)
}

// Request describes one outgoing call. ETag takes precedence over
// IfModifiedSince; at most one conditional header is sent.
type Request struct {
	Method          string
	URL             string
	ETag            string
	IfModifiedSince time.Time
}

// Client issues requests with a fixed user agent and never follows
// redirects, leaving redirect policy to the caller.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	limiter     *rate.Limiter
	idleTimeout time.Duration
}

// NewClient builds a client. timeout bounds connecting, the TLS handshake,
// waiting for response headers and any single stall while reading a body; it
// never caps the total length of a transfer. A zero timeout disables these
// limits and a zero interval disables request pacing.
func NewClient(userAgent string, timeout, interval time.Duration) *Client {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		transport.DialContext = (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		transport.TLSHandshakeTimeout = timeout
		transport.ResponseHeaderTimeout = timeout
	}

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent:   userAgent,
		limiter:     rate.NewLimiter(limit, 1),
		idleTimeout: timeout,
	}
}

// Do sends the request. The caller owns the response body.
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("request pacing interrupted: %w", err)
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	reqCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(reqCtx, method, r.URL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	if r.ETag != "" {
		req.Header.Set("If-None-Match", r.ETag)
	} else if !r.IfModifiedSince.IsZero() {
		req.Header.Set("If-Modified-Since", r.IfModifiedSince.UTC().Format(http.TimeFormat))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to fetch %s: %w", r.URL, err)
	}

	if c.idleTimeout <= 0 {
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}

	resp.Body = newIdleTimeoutBody(resp.Body, c.idleTimeout, cancel)
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

// idleTimeoutBody aborts the request when no read completes within timeout.
// Each completed read restarts the clock, so a slow but steady body is never
// cut off.
type idleTimeoutBody struct {
	io.ReadCloser
	timeout time.Duration
	timer   *time.Timer
	stalled atomic.Bool
	cancel  context.CancelFunc
}

func newIdleTimeoutBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) *idleTimeoutBody {
	b := &idleTimeoutBody{ReadCloser: body, timeout: timeout, cancel: cancel}
	b.timer = time.AfterFunc(timeout, func() {
		b.stalled.Store(true)
		cancel()
	})
	return b
}

func (b *idleTimeoutBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && err != io.EOF && b.stalled.Load() {
		return n, fmt.Errorf("%w: no data for %s", ErrBodyStalled, b.timeout)
	}
	b.timer.Reset(b.timeout)
	return n, err
}

func (b *idleTimeoutBody) Close() error {
	b.timer.Stop()
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
