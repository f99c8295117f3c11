package trace

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// WSClient is a viewer-side connection to a WSSink: it dials the server
// started by WSSink.Serve, decodes the JSON event stream, and makes it
// available on a channel. Exists mainly so this package's own tests can
// assert that events emitted on one end arrive on the other without
// standing up an external tool.
type WSClient struct {
	conn   *websocket.Conn
	Events chan Event
	errc   chan error
}

// DialWSClient connects to a WSSink listening at addr.
func DialWSClient(addr string) (*WSClient, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(fmt.Sprintf("ws://%s/trace", addr), nil)
	if err != nil {
		return nil, fmt.Errorf("trace: dial %s: %w", addr, err)
	}

	c := &WSClient{conn: conn, Events: make(chan Event, 256), errc: make(chan error, 1)}
	go c.readLoop()
	return c, nil
}

func (c *WSClient) readLoop() {
	defer close(c.Events)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case c.errc <- err:
			default:
			}
			return
		}
		var e Event
		if err := json.Unmarshal(payload, &e); err != nil {
			continue
		}
		c.Events <- e
	}
}

// Close disconnects the client.
func (c *WSClient) Close() error {
	return c.conn.Close()
}
