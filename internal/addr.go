package internal

import (
	"encoding/binary"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"unicode/utf8"
)

// AddrType is the V2Ray-family address type tag used by VMess and VLESS.
type AddrType byte

const (
	AddrTypeIPv4   AddrType = 1
	AddrTypeDomain AddrType = 2
	AddrTypeIPv6   AddrType = 3
)

// TrojanAddrType is Trojan's SOCKS5-derived address type tag. Its values
// overlap numerically with AddrType's (e.g. both use differing numbers for
// the same kind), so it is kept as a distinct type and translated to the
// shared addrKind below rather than folded into the same switch — mixing
// the two tables into one constant space as overlapping case values would
// not even compile.
type TrojanAddrType byte

const (
	TrojanAddrTypeIPv4   TrojanAddrType = 1
	TrojanAddrTypeDomain TrojanAddrType = 3
	TrojanAddrTypeIPv6   TrojanAddrType = 4
)

// addrKind is the protocol-agnostic address shape once a wire-specific
// type tag has been translated.
type addrKind byte

const (
	addrKindIPv4 addrKind = iota
	addrKindDomain
	addrKindIPv6
)

func (t AddrType) kind() (addrKind, error) {
	switch t {
	case AddrTypeIPv4:
		return addrKindIPv4, nil
	case AddrTypeDomain:
		return addrKindDomain, nil
	case AddrTypeIPv6:
		return addrKindIPv6, nil
	default:
		return 0, fmt.Errorf("unknown address type %d", t)
	}
}

func (t TrojanAddrType) kind() (addrKind, error) {
	switch t {
	case TrojanAddrTypeIPv4:
		return addrKindIPv4, nil
	case TrojanAddrTypeDomain:
		return addrKindDomain, nil
	case TrojanAddrTypeIPv6:
		return addrKindIPv6, nil
	default:
		return 0, fmt.Errorf("unknown trojan address type %d", t)
	}
}

// readAddr reads a V2Ray-family (VMess/VLESS) address body given its
// already-consumed type tag.
func readAddr(r io.Reader, t AddrType) (string, error) {
	k, err := t.kind()
	if err != nil {
		return "", err
	}
	return readAddrKind(r, k)
}

// readTrojanAddr reads a Trojan address body given its already-consumed
// type tag, per spec §4.6's intentionally distinct type table.
func readTrojanAddr(r io.Reader, t TrojanAddrType) (string, error) {
	k, err := t.kind()
	if err != nil {
		return "", err
	}
	return readAddrKind(r, k)
}

func readAddrKind(r io.Reader, k addrKind) (string, error) {
	switch k {
	case addrKindIPv4:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("read ipv4: %w", err)
		}
		return netip.AddrFrom4(b).String(), nil
	case addrKindIPv6:
		var b [16]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("read ipv6: %w", err)
		}
		return netip.AddrFrom16(b).String(), nil
	case addrKindDomain:
		var lb [1]byte
		if _, err := io.ReadFull(r, lb[:]); err != nil {
			return "", fmt.Errorf("read domain length: %w", err)
		}
		buf := make([]byte, lb[0])
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("read domain: %w", err)
		}
		return lossyUTF8(buf), nil
	default:
		return "", fmt.Errorf("unknown address kind %d", k)
	}
}

func readPort(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read port: %w", err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// writeAddrRaw emits the raw 4- or 16-byte form of addr for outbound
// client-side framing (VLESS/Trojan). The core never emits a domain atom
// outbound, per spec §4.2.
func writeAddrRaw(addr string) ([]byte, AddrType, error) {
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return nil, 0, fmt.Errorf("address %q is not an IP: %w", addr, err)
	}
	if a.Is4() {
		b := a.As4()
		return b[:], AddrTypeIPv4, nil
	}
	b := a.As16()
	return b[:], AddrTypeIPv6, nil
}

// lossyUTF8 mirrors Rust's String::from_utf8_lossy: invalid byte sequences
// are replaced with U+FFFD rather than rejected.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[size:]
	}
	return sb.String()
}
