// Package rtd speaks the feed's text protocol: one ASCII command per
// TCP connection, pipe/semicolon-delimited responses, Brazilian locale
// numerics. It provides the one-shot client and the quote and ranking
// decoders built on it.
package rtd

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"
)

// maxResponseBytes bounds a single feed response. The RTD server
// answers every command with one frame well under this.
const maxResponseBytes = 32 << 10

// Transport is the single-command exchange the decoders run on.
type Transport interface {
	Send(ctx context.Context, command string) (string, error)
}

// Client speaks the RTD text protocol: one fresh TCP connection per
// command, one bounded read under a short deadline, no pooling and no
// keep-alive. Callers interpret the returned text.
type Client struct {
	addr        string
	dialTimeout time.Duration
	readTimeout time.Duration
}

func NewClient(host string, port int, dialTimeout, readTimeout time.Duration) *Client {
	return &Client{
		addr:        net.JoinHostPort(host, strconv.Itoa(port)),
		dialTimeout: dialTimeout,
		readTimeout: readTimeout,
	}
}

func (c *Client) Send(ctx context.Context, command string) (string, error) {
	d := net.Dialer{Timeout: c.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", &TransportError{Op: "dial " + c.addr, Err: err}
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(c.readTimeout))
	if _, err := conn.Write([]byte(command)); err != nil {
		return "", &TransportError{Op: "write", Err: err}
	}

	buf := make([]byte, maxResponseBytes)
	_ = conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	n, err := conn.Read(buf)
	if err != nil {
		return "", &TransportError{Op: "read", Err: err}
	}
	return strings.TrimSpace(string(buf[:n])), nil
}
