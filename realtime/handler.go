package realtime

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// safeConn serializes writes to one socket. Fan-out runs from many
// goroutines and websocket connections do not allow concurrent writers.
type safeConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *safeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *safeConn) Close() error {
	return c.conn.Close()
}

// UpgradeRequired gates the realtime route to websocket upgrade requests.
func UpgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handler registers the authenticated socket, acks it, then blocks on the
// read loop until the peer goes away. The auth middleware has already
// rejected anything without a valid session cookie, so user_id is set.
func Handler(reg *Registry) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		if userID == "" {
			_ = conn.Close()
			return
		}

		sc := &safeConn{conn: conn}
		reg.Register(userID, sc)
		defer reg.Unregister(userID, sc)

		_ = sc.WriteJSON(Frame{Type: FrameAck})

		// Inbound traffic is ignored; the read loop only detects close and
		// transport errors.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
