package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// Conn serialises writes so the read loop and the dialog relay can share
// one connection.
type Conn struct {
	*websocket.Conn
	mu sync.Mutex
}

func NewConn(c *websocket.Conn) *Conn {
	return &Conn{Conn: c}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(code, errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Code:  code,
		Error: errMsg,
	})
}

// ReadRequest reads the next client action, extending the read deadline.
func (c *Conn) ReadRequest() (RequestPayload, error) {
	var req RequestPayload
	_ = c.SetReadDeadline(time.Now().Add(readWait))
	err := c.ReadJSON(&req)
	return req, err
}
