package internal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// VlessCodec implements the plain-framed VLESS request decode, response
// preamble, and outbound client-side request emission of spec §4.5.
// Grounded on addr.go for address forms; VLESS has no AEAD so decode is a
// straight sequential field read, the shape teacher's parseSocksAddrAt
// used for its own (now-removed) SOCKS5 request decode.
type VlessCodec struct {
	UUID uuid.UUID
}

func (c *VlessCodec) DecodeRequest(r io.Reader, ctx *RequestContext) error {
	var version byte
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return wrapErr(KindTransport, "vless.version", err)
	}
	if version != 0 {
		return wrapErr(KindBadRequest, "vless.version", fmt.Errorf("unsupported version %d", version))
	}

	var id [16]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return wrapErr(KindTransport, "vless.uuid", err)
	}
	if !bytes.Equal(id[:], c.UUID[:]) {
		return wrapErr(KindAuth, "vless.uuid", fmt.Errorf("uuid mismatch"))
	}

	var addonLen byte
	if err := binary.Read(r, binary.BigEndian, &addonLen); err != nil {
		return wrapErr(KindTransport, "vless.addon_len", err)
	}
	if addonLen > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(addonLen)); err != nil {
			return wrapErr(KindTransport, "vless.addon", err)
		}
	}

	var networkByte byte
	if err := binary.Read(r, binary.BigEndian, &networkByte); err != nil {
		return wrapErr(KindTransport, "vless.instruction", err)
	}

	port, err := readPort(r)
	if err != nil {
		return wrapErr(KindTransport, "vless.port", err)
	}

	var addrType byte
	if err := binary.Read(r, binary.BigEndian, &addrType); err != nil {
		return wrapErr(KindTransport, "vless.addr_type", err)
	}
	addr, err := readAddr(r, AddrType(addrType))
	if err != nil {
		return wrapErr(KindBadRequest, "vless.addr", err)
	}

	switch networkByte {
	case 1:
		ctx.Network = NetworkTCP
	case 2:
		ctx.Network = NetworkUDP
	default:
		return wrapErr(KindBadRequest, "vless.network", fmt.Errorf("unknown network byte %d", networkByte))
	}
	ctx.Address = addr
	ctx.Port = port
	return nil
}

// WriteResponsePreamble writes VLESS's fixed two-byte reply (version echo,
// addon length), both zero.
func (c *VlessCodec) WriteResponsePreamble(w io.Writer) error {
	if _, err := w.Write([]byte{0, 0}); err != nil {
		return wrapErr(KindTransport, "vless.response_preamble", err)
	}
	return nil
}

// EncodeOutboundRequest builds this core's own VLESS client request when
// acting as an outbound: version(0) | uuid | addon_len(0) | network |
// port | addr_type | addr_raw. Only IP destinations are ever emitted, per
// spec §4.2.
func EncodeOutboundRequest(id uuid.UUID, network Network, addr string, port uint16) ([]byte, error) {
	raw, addrType, err := writeAddrRaw(addr)
	if err != nil {
		return nil, fmt.Errorf("vless outbound: %w", err)
	}

	var networkByte byte = 1
	if network == NetworkUDP {
		networkByte = 2
	}

	buf := new(bytes.Buffer)
	buf.WriteByte(0)
	buf.Write(id[:])
	buf.WriteByte(0)
	buf.WriteByte(networkByte)
	portBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(portBuf, port)
	buf.Write(portBuf)
	// VLESS's outbound addr_type is its own 1-or-2 scheme (1 = 4-byte,
	// 2 = 16-byte address), distinct from the shared AddrType enum (which
	// reserves 3 for IPv6) that writeAddrRaw's addrType is expressed in.
	var vlessAddrType byte = 1
	if addrType == AddrTypeIPv6 {
		vlessAddrType = 2
	}
	buf.WriteByte(vlessAddrType)
	buf.Write(raw)
	return buf.Bytes(), nil
}

// VlessOutboundReplyStripper strips VLESS's two-byte reply prefix exactly
// once from upstream reads, per spec §4.5 ("skip the first two bytes
// exactly once").
type VlessOutboundReplyStripper struct {
	io.Reader
	skipped bool
}

func (s *VlessOutboundReplyStripper) Read(p []byte) (int, error) {
	if !s.skipped {
		s.skipped = true
		var hdr [2]byte
		if _, err := io.ReadFull(s.Reader, hdr[:]); err != nil {
			return 0, err
		}
	}
	return s.Reader.Read(p)
}
