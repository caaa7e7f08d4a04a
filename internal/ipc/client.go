package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds a single request round trip.
	DefaultTimeout = 10 * time.Second

	socketName = "gridswitch.sock"
)

// DefaultSocketPath returns the control socket location:
// $XDG_RUNTIME_DIR/gridswitch.sock, falling back to /tmp.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, socketName)
	}
	return filepath.Join(os.TempDir(), socketName)
}

// Client talks to a running daemon over the control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
	conn       net.Conn
	reader     *bufio.Reader
}

// NewClient creates a client. Empty socketPath and zero timeout select
// the defaults.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath()
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Connect establishes the socket connection.
func (c *Client) Connect() error {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon at %s (is it running?): %w", c.socketPath, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Do sends one request and waits for its response. It connects lazily
// on first use.
func (c *Client) Do(ctx context.Context, method string, params map[string]interface{}) (map[string]interface{}, error) {
	if c.conn == nil {
		if err := c.Connect(); err != nil {
			return nil, err
		}
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := NewRequest(uuid.New().String(), method, params)
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	data = append(data, '\n')

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set deadline: %w", err)
	}
	if _, err := c.conn.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	// Event envelopes may be interleaved if this connection has
	// subscribed; skip until the matching response arrives.
	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		var env MessageEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		if env.Type != "response" || env.Response == nil {
			continue
		}
		if env.Response.ID != req.Request.ID {
			continue
		}
		if env.Response.IsError() {
			return nil, fmt.Errorf("daemon error: %s", env.Response.GetError())
		}
		return env.Response.Result, nil
	}
}

// Ping checks daemon liveness.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, "ping", nil)
	return err
}

// Status fetches the daemon's state snapshot as raw JSON-shaped data.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	return c.Do(ctx, "status", nil)
}

// Subscribe registers this connection for pushed events and returns a
// channel of event envelopes. The channel closes when the connection
// drops or ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context) (<-chan *Event, error) {
	if _, err := c.Do(ctx, "subscribe", nil); err != nil {
		return nil, err
	}
	// Reading events is open-ended; clear the request deadline.
	if err := c.conn.SetDeadline(time.Time{}); err != nil {
		return nil, err
	}

	events := make(chan *Event, 16)
	go func() {
		defer close(events)
		for {
			line, err := c.reader.ReadBytes('\n')
			if err != nil {
				return
			}
			var env MessageEnvelope
			if err := json.Unmarshal(line, &env); err != nil {
				continue
			}
			if env.Type != "event" || env.Event == nil {
				continue
			}
			select {
			case events <- env.Event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
