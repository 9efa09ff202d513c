package internal

import (
	"context"
	"io"
)

// WsByteStream adapts a message-oriented WSConn into a plain byte stream.
// One reassembly buffer is refilled a whole message at a time and drained
// by Read; a non-message event (close, error, end of stream) resolves the
// pending Read as a clean EOF rather than propagating the underlying
// error, matching spec §4.3. Grounded on teacher's WSStreamConn in the
// now-removed internal/outline_tcp.go, trimmed to the single-message
// reassembly buffer the spec calls for.
type WsByteStream struct {
	conn WSConn
	ctx  context.Context
	buf  []byte
	eof  bool
}

func NewWsByteStream(ctx context.Context, conn WSConn) *WsByteStream {
	return &WsByteStream{conn: conn, ctx: ctx}
}

// Read fills p from the reassembly buffer, pulling one more WebSocket
// message if the buffer is empty. Once the stream has seen EOF it keeps
// returning EOF — the underlying connection is never read from again.
func (s *WsByteStream) Read(p []byte) (int, error) {
	for len(s.buf) == 0 {
		if s.eof {
			return 0, io.EOF
		}
		typ, data, err := s.conn.Read(s.ctx)
		if err != nil {
			s.eof = true
			return 0, io.EOF
		}
		if typ != WSMessageBinary {
			// Text messages are ignored per spec §6; wait for the next one.
			continue
		}
		s.buf = data
	}
	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

// Write sends p as a single binary WebSocket frame. Per spec §4.3 this
// either succeeds with the full length or fails; there is no partial
// write or internal fragmentation.
func (s *WsByteStream) Write(p []byte) (int, error) {
	if err := s.conn.Write(s.ctx, WSMessageBinary, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close tears down the underlying WebSocket with a normal-closure code.
func (s *WsByteStream) Close() error {
	return s.conn.Close(WSStatusNormalClosure, "")
}
