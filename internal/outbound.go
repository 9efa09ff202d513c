package internal

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/bepass-tunl/tunnelcore/internal/config"
)

// OutboundClient is the duplex-stream-plus-one-shot-handshake contract of
// spec §9's design notes: handshake is a no-op for Freedom and Blackhole,
// emits the protocol's client-side preamble for VLESS, Trojan and Relay
// V1/V2, and fails with a KindConfig error for VMess and Bepass, which
// have no outbound framing here.
type OutboundClient struct {
	conn DuplexStream
	out  config.Outbound
}

// Dialer opens the raw transport connection an OutboundClient handshakes
// over. Grounded on teacher's TCPDialer in the now-removed
// internal/transport/factory.go, narrowed to the single concrete
// implementation this core needs (net.Dialer) since the spec carries no
// pluggable-transport requirement.
type Dialer struct {
	d net.Dialer
}

func NewDialer() *Dialer { return &Dialer{} }

func (d *Dialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	return d.d.DialContext(ctx, network, address)
}

// Connect dials host:port and performs the outbound protocol's one-shot
// handshake, returning a stream whose Read/Write thereafter carry opaque
// payload bytes only. Step 3-4 of spec §4.10.
func Connect(ctx context.Context, dialer *Dialer, out config.Outbound, host string, port uint16, reqNetwork Network) (*OutboundClient, error) {
	if out.Protocol == config.ProtocolBlackhole {
		return &OutboundClient{conn: &blackholeConn{}, out: out}, nil
	}

	// The host environment supplies only an outbound TCP socket factory
	// (spec §1); a Freedom request for UDP has no raw socket to use, so it
	// is served as DNS-over-HTTPS instead, per spec §4.11's MockUDP.
	if reqNetwork == NetworkUDP && out.Protocol == config.ProtocolFreedom {
		return &OutboundClient{conn: newMockUDPConn(), out: out}, nil
	}

	conn, err := dialer.Dial(ctx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, wrapErr(KindUpstream, "outbound.connect", err)
	}

	oc := &OutboundClient{conn: conn, out: out}
	if err := oc.handshake(host, reqNetwork); err != nil {
		conn.Close()
		return nil, err
	}
	return oc, nil
}

func (oc *OutboundClient) handshake(targetAddr string, network Network) error {
	switch oc.out.Protocol {
	case config.ProtocolFreedom, config.ProtocolBlackhole:
		return nil
	case config.ProtocolVLESS:
		req, err := EncodeOutboundRequest(oc.out.UUID, network, targetAddr, oc.out.Port)
		if err != nil {
			return wrapErr(KindUpstream, "outbound.vless.encode", err)
		}
		if _, err := oc.conn.Write(req); err != nil {
			return wrapErr(KindTransport, "outbound.vless.write", err)
		}
		oc.conn = &vlessOutboundStream{DuplexStream: oc.conn, reader: &VlessOutboundReplyStripper{Reader: oc.conn}}
		return nil
	case config.ProtocolTrojan:
		req, err := encodeTrojanOutboundRequest(oc.out.Password, network, targetAddr, oc.out.Port)
		if err != nil {
			return wrapErr(KindUpstream, "outbound.trojan.encode", err)
		}
		if _, err := oc.conn.Write(req); err != nil {
			return wrapErr(KindTransport, "outbound.trojan.write", err)
		}
		return nil
	case config.ProtocolRelayV1:
		hdr := EncodeRelayV1Header(network, targetAddr, oc.out.Port)
		if _, err := oc.conn.Write(hdr); err != nil {
			return wrapErr(KindTransport, "outbound.relay_v1.write", err)
		}
		return nil
	case config.ProtocolRelayV2:
		hdr, err := EncodeRelayV2Header(network, targetAddr, oc.out.Port)
		if err != nil {
			return wrapErr(KindUpstream, "outbound.relay_v2.encode", err)
		}
		if _, err := oc.conn.Write(hdr); err != nil {
			return wrapErr(KindTransport, "outbound.relay_v2.write", err)
		}
		return nil
	default:
		// VMess and Bepass define no outbound client framing in spec
		// §4.4/§4.7 — only their inbound server-side decode is specified.
		return wrapErr(KindConfig, "outbound.handshake", fmt.Errorf("protocol %s has no defined outbound handshake", oc.out.Protocol))
	}
}

func (oc *OutboundClient) Read(p []byte) (int, error)  { return oc.conn.Read(p) }
func (oc *OutboundClient) Write(p []byte) (int, error) { return oc.conn.Write(p) }
func (oc *OutboundClient) Close() error                { return oc.conn.Close() }

// vlessOutboundStream routes reads through the reply stripper while
// writes and Close still go straight to the underlying connection.
type vlessOutboundStream struct {
	DuplexStream
	reader io.Reader
}

func (s *vlessOutboundStream) Read(p []byte) (int, error) { return s.reader.Read(p) }

func encodeTrojanOutboundRequest(password string, network Network, addr string, port uint16) ([]byte, error) {
	hash := trojanPasswordHash(password)
	raw, addrType, err := writeAddrRaw(addr)
	if err != nil {
		return nil, fmt.Errorf("trojan outbound: %w", err)
	}
	trojanAddrType := TrojanAddrTypeIPv4
	if addrType == AddrTypeIPv6 {
		trojanAddrType = TrojanAddrTypeIPv6
	}

	command := byte(1)
	if network == NetworkUDP {
		command = 3
	}

	buf := make([]byte, 0, 56+2+1+1+len(raw)+2+2)
	buf = append(buf, []byte(hash)...)
	buf = append(buf, '\r', '\n')
	buf = append(buf, command, byte(trojanAddrType))
	buf = append(buf, raw...)
	portBuf := make([]byte, 2)
	portBuf[0] = byte(port >> 8)
	portBuf[1] = byte(port)
	buf = append(buf, portBuf...)
	buf = append(buf, '\r', '\n')
	return buf, nil
}
