package server

import (
	"fmt"
	"net"
	"sync"
)

// Client is one connection to a running server. Calls are serialised, so a
// Client can be shared between goroutines.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

func Dial(sockPath string) (*Client, error) {
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", sockPath, err)
	}
	return &Client{conn: conn}, nil
}

// Call sends msg, filling in an id when it has none, and waits for the reply.
func (c *Client) Call(msg map[string]any) (map[string]any, error) {
	if _, ok := msg["id"]; !ok {
		msg["id"] = NextID()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := WriteFrame(c.conn, msg); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	resp, err := ReadFrame(c.conn)
	if err != nil {
		return nil, fmt.Errorf("receive: %w", err)
	}
	return resp, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
