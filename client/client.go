// Package client is a small websocket client for the relay protocol, used by the probe CLI
// and the black-box tests.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"shop-relay/domain/event"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Client is one relay connection. Frames are read in the background and queued until
// Next or WaitFor consumes them.
type Client struct {
	conn   *websocket.Conn
	frames chan event.Inbound

	writeMu sync.Mutex
	mu      sync.Mutex
	err     error
}

// Dial opens a connection to rawURL (for example ws://localhost:8080/ws).
// An empty token opens an anonymous connection.
func Dial(ctx context.Context, rawURL, token string) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid relay url %q: %w", rawURL, err)
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", rawURL, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}

	c := &Client{conn: conn, frames: make(chan event.Inbound, 256)}
	go c.read()
	return c, nil
}

func (c *Client) read() {
	defer close(c.frames)
	for {
		var frame event.Inbound
		if err := c.conn.ReadJSON(&frame); err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}
		c.frames <- frame
	}
}

// Send writes one {event, data} frame.
func (c *Client) Send(name string, data any) error {
	frame := struct {
		Event string `json:"event"`
		Data  any    `json:"data,omitempty"`
	}{Event: name, Data: data}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(frame)
}

// Frames exposes the received frames, closed when the connection ends.
func (c *Client) Frames() <-chan event.Inbound { return c.frames }

// Next returns the next received frame.
func (c *Client) Next(ctx context.Context) (event.Inbound, error) {
	select {
	case <-ctx.Done():
		return event.Inbound{}, ctx.Err()
	case frame, ok := <-c.frames:
		if !ok {
			return event.Inbound{}, c.Err()
		}
		return frame, nil
	}
}

// WaitFor skips frames until one named name arrives and decodes its data into out, if not nil.
func (c *Client) WaitFor(ctx context.Context, name string, out any) error {
	for {
		frame, err := c.Next(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %s: %w", name, err)
		}
		if frame.Name != name {
			continue
		}
		if out == nil || len(frame.Data) == 0 {
			return nil
		}
		return json.Unmarshal(frame.Data, out)
	}
}

// Err returns the read error that ended the connection, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close sends a close frame and releases the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}
