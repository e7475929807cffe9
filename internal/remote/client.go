package remote

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"sttmgr/config/models"
)

// DefaultCallTimeout bounds every remote call so a stalled daemon can
// never leave a busy flag set indefinitely.
const DefaultCallTimeout = 10 * time.Second

// Client speaks the daemon's line protocol over its unix socket. One
// connection per call; the daemon replies with a single line.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a Client for the daemon socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: DefaultCallTimeout}
}

func (c *Client) GetSettings(ctx context.Context) (models.Settings, error) {
	resp, err := c.roundTrip(ctx, "GET")
	if err != nil {
		return models.Settings{}, err
	}
	var settings models.Settings
	if err := json.Unmarshal([]byte(resp), &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse daemon response: %w", err)
	}
	settings.Normalize()
	return settings, nil
}

func (c *Client) SetEnabled(ctx context.Context, enabled bool) error {
	return c.expectOK(ctx, fmt.Sprintf("SET_ENABLED %t", enabled))
}

func (c *Client) SetProvider(ctx context.Context, providerID string) error {
	return c.expectOK(ctx, "SET_PROVIDER "+url.QueryEscape(providerID))
}

func (c *Client) SetBaseURL(ctx context.Context, providerID, baseURL string) error {
	return c.expectOK(ctx, fmt.Sprintf("SET_BASE_URL %s %s",
		url.QueryEscape(providerID), url.QueryEscape(baseURL)))
}

func (c *Client) SetAPIKey(ctx context.Context, providerID, apiKey string) error {
	return c.expectOK(ctx, fmt.Sprintf("SET_API_KEY %s %s",
		url.QueryEscape(providerID), url.QueryEscape(apiKey)))
}

func (c *Client) SetModel(ctx context.Context, providerID, model string) error {
	return c.expectOK(ctx, fmt.Sprintf("SET_MODEL %s %s",
		url.QueryEscape(providerID), url.QueryEscape(model)))
}

// Ping checks the daemon is answering.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, "PING")
	if err != nil {
		return err
	}
	if resp != "PONG" {
		return fmt.Errorf("unexpected ping response: %s", resp)
	}
	return nil
}

func (c *Client) expectOK(ctx context.Context, command string) error {
	resp, err := c.roundTrip(ctx, command)
	if err != nil {
		return err
	}
	if resp != "OK" {
		return fmt.Errorf("%s", strings.TrimPrefix(resp, "ERROR: "))
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, command string) (string, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var dialer net.Dialer
	dialer.Deadline = deadline
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return "", fmt.Errorf("failed to reach daemon: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	if _, err := conn.Write([]byte(command + "\n")); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && resp == "" {
		return "", fmt.Errorf("failed to read daemon response: %w", err)
	}
	return strings.TrimSpace(resp), nil
}
