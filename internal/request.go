package internal

import (
	"io"

	"github.com/bepass-tunl/tunnelcore/internal/config"
)

// Network is the transport the decoded request asked for.
type Network uint8

const (
	NetworkTCP Network = iota
	NetworkUDP
)

func (n Network) String() string {
	if n == NetworkUDP {
		return "udp"
	}
	return "tcp"
}

// RequestContext is the logical request being tunnelled, filled in two
// phases per spec §3: Inbound is set by the request handler before codec
// decode; Address/Port/Network are filled by the protocol codec.
type RequestContext struct {
	Inbound *config.Inbound
	Address string
	Port    uint16
	Network Network
}

// DuplexStream is the minimal contract every inbound/outbound stream
// satisfies once framing is stripped away: plain, opaque bytes.
type DuplexStream interface {
	io.Reader
	io.Writer
	io.Closer
}

// RequestHeaderCodec decodes an inbound protocol's request header from r,
// filling ctx, and — where the protocol defines one — writes a response
// preamble to w before the tunnel starts pumping payload bytes.
type RequestHeaderCodec interface {
	DecodeRequest(r io.Reader, ctx *RequestContext) error
	WriteResponsePreamble(w io.Writer) error
}
