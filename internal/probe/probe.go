// Package probe checks whether an STT endpoint is reachable.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single reachability probe.
const DefaultTimeout = 10 * time.Second

// Result describes one completed probe.
type Result struct {
	Reachable  bool
	StatusCode int
	Duration   time.Duration
	Err        error
}

var client = &http.Client{
	Timeout: DefaultTimeout,
	Transport: &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

// Ping sends a HEAD request to baseURL with the given API key. Any
// response below 500 counts as reachable; an endpoint that rejects the
// probe with 401 or 404 is still listening.
func Ping(ctx context.Context, baseURL, apiKey string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return Result{Duration: duration, Err: categorize(err)}
	}
	defer resp.Body.Close()

	return Result{
		Reachable:  resp.StatusCode < 500,
		StatusCode: resp.StatusCode,
		Duration:   duration,
	}
}

// categorize maps transport failures onto messages a user can act on.
func categorize(err error) error {
	errStr := err.Error()

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return fmt.Errorf("request timed out after %s", DefaultTimeout)
	}
	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused (nothing listening on that port)")
	case strings.Contains(errStr, "network is unreachable"):
		return fmt.Errorf("network is unreachable")
	case strings.Contains(errStr, "EOF"):
		return fmt.Errorf("connection closed unexpectedly")
	case strings.Contains(errStr, "no such host"), strings.Contains(errStr, "NXDOMAIN"):
		return fmt.Errorf("DNS lookup failed (host does not exist)")
	default:
		return fmt.Errorf("connection failed: %w", err)
	}
}
