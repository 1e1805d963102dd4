package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// MaxRedirectHops bounds how many moves a caller follows for one logical fetch.
const MaxRedirectHops = 5

// RedirectRange is the inclusive span of status codes a caller treats as a
// redirect worth following.
type RedirectRange struct {
	Min int
	Max int
}

var (
	// FeedMoveStatuses are treated as a permanent feed move.
	FeedMoveStatuses = RedirectRange{Min: 301, Max: 309}
	// EnclosureRedirectStatuses are followed once when downloading media.
	EnclosureRedirectStatuses = RedirectRange{Min: 301, Max: 399}
)

func (r RedirectRange) Contains(status int) bool {
	return status >= r.Min && status <= r.Max
}

// Location returns the response's Location header resolved against the
// request URL, or "" when absent or unparsable.
func Location(resp *http.Response) string {
	if resp.Header.Get("Location") == "" {
		return ""
	}
	loc, err := resp.Location()
	if err != nil {
		return ""
	}
	return loc.String()
}

// Target reports where resp redirects to when its status is in range and
// the location differs from requested.
func (r RedirectRange) Target(resp *http.Response, requested string) (string, bool) {
	if !r.Contains(resp.StatusCode) {
		return "", false
	}

	loc := Location(resp)
	if loc == "" || loc == requested {
		return "", false
	}

	return loc, true
}

// Follow sends r and, while the response redirects within rng to a
// different URL, re-issues the same request against the new location. At
// most maxHops redirects are followed; onMove, when set, runs before each hop
// and can abort it. It returns the final response and the URL that produced it.
func (c *Client) Follow(ctx context.Context, r Request, rng RedirectRange, maxHops int, onMove func(from, to string) error) (*http.Response, string, error) {
	current := r
	for hop := 0; ; hop++ {
		resp, err := c.Do(ctx, current)
		if err != nil {
			return nil, current.URL, err
		}

		target, ok := rng.Target(resp, current.URL)
		if !ok {
			return resp, current.URL, nil
		}
		discard(resp)

		if hop >= maxHops {
			return nil, current.URL, fmt.Errorf("%w: %s redirected to %s after %d hops", ErrTooManyRedirects, current.URL, target, hop)
		}

		if onMove != nil {
			if err := onMove(current.URL, target); err != nil {
				return nil, current.URL, err
			}
		}
		current.URL = target
	}
}

func discard(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
