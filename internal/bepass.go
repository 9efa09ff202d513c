package internal

import (
	"fmt"
	"io"
	"net/url"

	"github.com/gorilla/schema"
)

var bepassDecoder = schema.NewDecoder()

// bepassQuery is the WebSocket upgrade request's query string, decoded
// with gorilla/schema the way teacher decodes form-like input elsewhere
// in the pack's HTTP layer.
type bepassQuery struct {
	Host string `schema:"host,required"`
	Port uint16 `schema:"port,required"`
	Net  string `schema:"net,required"`
}

// BepassCodec implements spec §4.7: the "header" is the inbound HTTP
// request's query string, not a byte-stream preamble, so DecodeRequest
// takes the parsed values directly rather than reading from r.
type BepassCodec struct {
	Values url.Values
}

func (c *BepassCodec) DecodeRequest(r io.Reader, ctx *RequestContext) error {
	var q bepassQuery
	if err := bepassDecoder.Decode(&q, c.Values); err != nil {
		return wrapErr(KindBadRequest, "bepass.query", err)
	}

	switch q.Net {
	case "tcp":
		ctx.Network = NetworkTCP
	case "udp":
		ctx.Network = NetworkUDP
	default:
		return wrapErr(KindBadRequest, "bepass.net", fmt.Errorf("unknown net %q", q.Net))
	}
	ctx.Address = q.Host
	ctx.Port = q.Port
	return nil
}

// WriteResponsePreamble is a no-op: Bepass defines no response preamble.
func (c *BepassCodec) WriteResponsePreamble(w io.Writer) error { return nil }
