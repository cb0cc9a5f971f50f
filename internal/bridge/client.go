package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const defaultTimeout = 5 * time.Second

// Client sends commands to a running bridge server
type Client struct {
	addr    string
	token   string
	timeout time.Duration
	dialer  *websocket.Dialer
}

// NewClient creates a client for the bridge at addr (host:port)
func NewClient(addr, token string) *Client {
	return &Client{
		addr:    addr,
		token:   token,
		timeout: defaultTimeout,
		dialer: &websocket.Dialer{
			HandshakeTimeout: defaultTimeout,
		},
	}
}

// SetTimeout changes how long Invoke waits for the whole round trip
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Invoke runs cmd with args on the remote app and waits for its reply
func (c *Client) Invoke(ctx context.Context, cmd string, args any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode args: %w", err)
	}

	u := url.URL{Scheme: "ws", Host: c.addr, Path: Path}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return ErrUnauthorized
		}
		return fmt.Errorf("failed to connect to bridge: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
		_ = conn.SetReadDeadline(deadline)
	}

	req := Request{
		ID:   uuid.NewString(),
		Cmd:  cmd,
		Args: raw,
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("failed to send command: %w", err)
	}

	var reply Response
	if err := conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))

	if reply.ID != req.ID {
		return fmt.Errorf("reply id mismatch: sent %s, got %s", req.ID, reply.ID)
	}
	if !reply.OK {
		return fmt.Errorf("%w: %s", ErrCommandFailed, reply.Error)
	}
	return nil
}
