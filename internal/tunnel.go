package internal

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/docker/go-units"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/bepass-tunl/tunnelcore/internal/config"
)

// Tunnel orchestrates one connection's full lifecycle: decode, dispatch,
// connect, handshake, pump. Grounded on the stage ordering of teacher's
// (now-removed) internal/outline_tcp.go ProxyTCPOverOutlineWS, generalized
// from a single fixed Shadowsocks-over-WS path to the protocol-dispatched
// pipeline spec §4.10 describes.
type Tunnel struct {
	dispatcher *Dispatcher
	dialer     *Dialer
	logger     *zap.Logger
	active     atomic.Int64
}

func NewTunnel(dispatcher *Dispatcher, dialer *Dialer, logger *zap.Logger) *Tunnel {
	return &Tunnel{dispatcher: dispatcher, dialer: dialer, logger: logger}
}

// ActiveConnections reports the number of tunnels currently pumping bytes,
// for a caller that wants to log or expose it without its own bookkeeping.
func (t *Tunnel) ActiveConnections() int64 { return t.active.Load() }

func newRequestCodec(in *config.Inbound, query url.Values) RequestHeaderCodec {
	switch in.Protocol {
	case config.ProtocolVMess:
		return &VmessCodec{UUID: in.UUID}
	case config.ProtocolVLESS:
		return &VlessCodec{UUID: in.UUID}
	case config.ProtocolTrojan:
		return &TrojanCodec{Password: in.Password}
	case config.ProtocolBepass:
		return &BepassCodec{Values: query}
	default:
		return nil
	}
}

// Handle runs steps 1-6 of spec §4.10 for one accepted WebSocket
// connection. query carries the HTTP upgrade request's query string,
// consumed only by BepassCodec.
func (t *Tunnel) Handle(ctx context.Context, ws WSConn, in *config.Inbound, query url.Values) error {
	stream := NewWsByteStream(ctx, ws)
	defer stream.Close()

	codec := newRequestCodec(in, query)
	if codec == nil {
		return wrapErr(KindConfig, "tunnel.codec", fmt.Errorf("inbound protocol %s has no request codec", in.Protocol))
	}

	reqCtx := RequestContext{Inbound: in}
	if err := codec.DecodeRequest(stream, &reqCtx); err != nil {
		t.logger.Debug("tunnel: request decode failed", zap.String("path", in.Path), zap.Error(err))
		return err
	}

	out := t.dispatcher.DispatchOutbound(&reqCtx)
	host, port := UpstreamTarget(out, &reqCtx)

	upstream, err := Connect(ctx, t.dialer, out, host, port, reqCtx.Network)
	if err != nil {
		t.logger.Debug("tunnel: outbound connect failed",
			zap.String("protocol", string(out.Protocol)),
			zap.String("host", host), zap.Uint16("port", port), zap.Error(err))
		return err
	}
	defer upstream.Close()

	if err := codec.WriteResponsePreamble(stream); err != nil {
		return err
	}

	t.active.Inc()
	defer t.active.Dec()

	sent, received, err := copyBidirectional(stream, upstream)
	t.logger.Debug("tunnel: closed",
		zap.String("path", in.Path),
		zap.String("protocol", string(out.Protocol)),
		zap.String("sent", units.HumanSize(float64(sent))),
		zap.String("received", units.HumanSize(float64(received))),
		zap.Int64("active", t.active.Load()),
	)
	return err
}

type copyResult struct {
	n   int64
	err error
}

// copyBidirectional pumps bytes in both directions until both sides have
// reached EOF or errored, per spec §4.10 step 6. We wait for *both*
// directions to finish, but we also MUST actively propagate half-close/close
// signals, otherwise one io.Copy may block forever — typical when the client
// aborts: client->upstream stops, upstream->client keeps waiting on a read
// that will never come. As soon as either direction completes, both sides
// are force-closed to unblock the other.
func copyBidirectional(inbound, outbound DuplexStream) (sent int64, received int64, err error) {
	sentCh := make(chan copyResult, 1)
	receivedCh := make(chan copyResult, 1)

	go func() {
		n, e := io.Copy(outbound, inbound)
		_ = closeWrite(outbound)
		sentCh <- copyResult{n, e}
	}()
	go func() {
		n, e := io.Copy(inbound, outbound)
		_ = closeWrite(inbound)
		receivedCh <- copyResult{n, e}
	}()

	var sentErr, receivedErr error
	var sentDone, receivedDone, closed bool
	for !sentDone || !receivedDone {
		select {
		case r := <-sentCh:
			sent, sentErr = r.n, r.err
			sentDone = true
		case r := <-receivedCh:
			received, receivedErr = r.n, r.err
			receivedDone = true
		}
		if !closed {
			// First direction to finish: force-close both sides so the
			// still-running io.Copy isn't left blocked on a read forever.
			closed = true
			_ = inbound.Close()
			_ = outbound.Close()
		}
	}

	return sent, received, multierr.Combine(ignoreEOF(sentErr), ignoreEOF(receivedErr))
}

// closeWrite half-closes c's write side if it supports it, so the peer sees
// a clean EOF instead of the connection vanishing; otherwise it falls back
// to a full close.
func closeWrite(c DuplexStream) error {
	type closeWriter interface{ CloseWrite() error }
	if cw, ok := c.(closeWriter); ok {
		return cw.CloseWrite()
	}
	return c.Close()
}

func ignoreEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}
