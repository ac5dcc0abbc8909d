package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout:  10 * time.Second,
	ReadBufferSize:    4096,
	WriteBufferSize:   4096,
	CheckOrigin:       func(r *http.Request) bool { return true }, // SPA local
	EnableCompression: true,
}

// serveWS starts an independent push loop for one consumer. Loops share
// nothing but read access to the store, so a slow or dead consumer
// degrades only its own stream.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("ws upgrade", slog.String("err", err.Error()))
		return
	}
	c := &consumer{
		id:       uuid.NewString(),
		conn:     conn,
		srv:      s,
		interval: s.push,
		done:     make(chan struct{}),
	}
	s.log.Info("stream connected",
		slog.String("client", c.id),
		slog.String("remote", r.RemoteAddr),
	)
	go c.readLoop()
	go c.pushLoop()
}

type consumer struct {
	id       string
	conn     *websocket.Conn
	srv      *Server
	interval time.Duration
	done     chan struct{}
}

// readLoop drains inbound frames so pings/close are processed and a
// disconnect is noticed promptly.
func (c *consumer) readLoop() {
	defer close(c.done)
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// pushLoop delivers the combined snapshot on a fixed cadence until the
// write fails or the consumer disconnects. The snapshot doubles as the
// keepalive, so no separate pings are sent.
func (c *consumer) pushLoop() {
	ticker := time.NewTicker(c.interval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.srv.log.Info("stream closed", slog.String("client", c.id))
			return
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(c.srv.st.Snapshot()); err != nil {
				c.srv.log.Info("stream closed",
					slog.String("client", c.id),
					slog.String("err", err.Error()),
				)
				return
			}
		}
	}
}
