// Package live hosts the websocket side of the system: one session per
// connection, a single-threaded control loop per session, and a fan-out
// registry for re-broadcasting manual slide changes to co-viewers.
package live

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024
)

// Close codes sent before terminating a handshake that cannot proceed.
const (
	CloseUnauthorized = 4001
	CloseNotFound     = 4004
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Conn wraps a websocket with a single writer goroutine. The read side
// stays with the session's control loop so frames are processed one at
// a time.
type Conn struct {
	ws          *websocket.Conn
	logger      *slog.Logger
	send        chan []byte
	mu          sync.Mutex
	closed      bool
	closeCode   int
	closeReason string
	done        chan struct{}
	pumpDone    chan struct{}
}

func NewConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	c := &Conn{
		ws:       ws,
		logger:   logger,
		send:     make(chan []byte, 64),
		done:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()
	return c
}

// SendEvent marshals and enqueues one server event. A full buffer drops
// the event rather than blocking the caller.
func (c *Conn) SendEvent(event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	select {
	case c.send <- data:
		return nil
	default:
		c.logger.Warn("send buffer full, dropping event")
		return errSendBufferFull
	}
}

// ReadMessage blocks for the next client frame. Only the session loop
// may call this.
func (c *Conn) ReadMessage() (int, []byte, error) {
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	return c.ws.ReadMessage()
}

// CloseWithCode tears the connection down with an application close
// code. Events already queued are flushed before the close frame so the
// client always sees them first.
func (c *Conn) CloseWithCode(code int, reason string) error {
	return c.closeWith(code, reason)
}

func (c *Conn) Close() error {
	return c.closeWith(websocket.CloseNormalClosure, "")
}

func (c *Conn) closeWith(code int, reason string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	close(c.done)
	c.mu.Unlock()

	// The pump owns the writer. Wait for it to flush the queue and emit
	// the close frame before dropping the socket.
	select {
	case <-c.pumpDone:
	case <-time.After(writeWait):
	}
	return c.ws.Close()
}

func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.pumpDone)
		_ = c.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Error("websocket write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.flushAndCloseFrame()
			return
		}
	}
}

// flushAndCloseFrame drains events queued before shutdown was requested,
// then sends the close frame with the recorded code and reason.
func (c *Conn) flushAndCloseFrame() {
	for {
		select {
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			c.mu.Lock()
			code, reason := c.closeCode, c.closeReason
			c.mu.Unlock()
			if code == 0 {
				code = websocket.CloseNormalClosure
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(code, reason))
			return
		}
	}
}
