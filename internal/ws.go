package internal

import "context"

// WSMessageType mirrors the RFC 6455 opcodes this core cares about. Grounded
// on teacher's internal/ws_api.go.
type WSMessageType uint8

const (
	WSMessageText   WSMessageType = 1
	WSMessageBinary WSMessageType = 2
)

type WSStatusCode uint16

const (
	WSStatusNormalClosure WSStatusCode = 1000
	WSStatusProtocolError WSStatusCode = 1002
)

// WSConn is the minimal subset of a WebSocket connection the core needs: a
// message-event stream in, a message-write call out, and a close. The host
// environment (an edge-compute runtime's WebSocket object, or — in this
// repo's own HTTP server — nhooyr.io/websocket) only needs to satisfy this.
type WSConn interface {
	Read(ctx context.Context) (WSMessageType, []byte, error)
	Write(ctx context.Context, typ WSMessageType, data []byte) error
	Close(code WSStatusCode, reason string) error
}
