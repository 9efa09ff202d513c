package internal

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// relayV2Version tags every RelayCodec V2 record. Fixed by this
// implementation per spec §9(c), documented in DESIGN.md.
const relayV2Version = 0x02

const (
	relayNetworkTCP byte = 0x01
	relayNetworkUDP byte = 0x02
)

const (
	relayAddrFamilyIPv4 byte = 0x01
	relayAddrFamilyIPv6 byte = 0x02
)

// EncodeRelayV1Header builds the ASCII line header of spec §4.8's V1
// format: "{net}@{addr}${port}\r\n". Grounded on the original Rust
// relay_v1 writer's same literal wire form; there is no teacher precedent
// for this exact shape in the example pack.
func EncodeRelayV1Header(network Network, addr string, port uint16) []byte {
	return []byte(fmt.Sprintf("%s@%s$%d\r\n", network, addr, port))
}

// EncodeRelayV2Header builds the length-prefixed binary header of spec
// §4.8's V2 format, using the tag scheme fixed in DESIGN.md: 2-byte
// big-endian length covering everything after the length field itself,
// then version, network, address-family-tagged address, and port.
func EncodeRelayV2Header(network Network, addr string, port uint16) ([]byte, error) {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return nil, fmt.Errorf("relay v2: address %q is not an IP: %w", addr, err)
	}

	networkByte := relayNetworkTCP
	if network == NetworkUDP {
		networkByte = relayNetworkUDP
	}

	var addrFamily byte
	var addrBytes []byte
	if ip.Is4() {
		addrFamily = relayAddrFamilyIPv4
		b := ip.As4()
		addrBytes = b[:]
	} else {
		addrFamily = relayAddrFamilyIPv6
		b := ip.As16()
		addrBytes = b[:]
	}

	body := make([]byte, 0, 1+1+1+len(addrBytes)+2)
	body = append(body, relayV2Version, networkByte, addrFamily)
	body = append(body, addrBytes...)
	portBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(portBuf, port)
	body = append(body, portBuf...)

	out := make([]byte, 2+len(body))
	binary.BigEndian.PutUint16(out, uint16(len(body)))
	copy(out[2:], body)
	return out, nil
}
