package internal

import (
	"context"
	"net/http"

	"nhooyr.io/websocket"
)

// nhooyrConn adapts an nhooyr.io/websocket connection to WSConn. Grounded on
// teacher's internal/ws_coder.go, flipped from Dial to Accept (this core
// terminates inbound clients, it never dials one) and switched from the
// unlisted github.com/coder/websocket fork to the module teacher's go.mod
// actually requires.
type nhooyrConn struct {
	c *websocket.Conn
}

func (c *nhooyrConn) Read(ctx context.Context) (WSMessageType, []byte, error) {
	mt, data, err := c.c.Read(ctx)
	if err != nil {
		return 0, nil, err
	}
	if mt == websocket.MessageText {
		return WSMessageText, data, nil
	}
	return WSMessageBinary, data, nil
}

func (c *nhooyrConn) Write(ctx context.Context, typ WSMessageType, data []byte) error {
	mt := websocket.MessageBinary
	if typ == WSMessageText {
		mt = websocket.MessageText
	}
	return c.c.Write(ctx, mt, data)
}

func (c *nhooyrConn) Close(code WSStatusCode, reason string) error {
	return c.c.Close(websocket.StatusCode(code), reason)
}

// AcceptWebSocket upgrades an inbound HTTP request to a WebSocket connection.
// Binary messages only per spec §6; no subprotocol negotiation.
func AcceptWebSocket(w http.ResponseWriter, r *http.Request) (WSConn, error) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: nil,
	})
	if err != nil {
		return nil, err
	}
	return &nhooyrConn{c: c}, nil
}
