package internal

import (
	"encoding/binary"
	"testing"
)

func TestEncodeRelayV1Header(t *testing.T) {
	got := string(EncodeRelayV1Header(NetworkTCP, "example.com", 443))
	want := "tcp@example.com$443\r\n"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

// TestEncodeRelayV2Header checks the literal end-to-end scenario from
// spec §8: a V2 header encoding {V2, TCP, 1.1.1.1, 443}.
func TestEncodeRelayV2Header(t *testing.T) {
	hdr, err := EncodeRelayV2Header(NetworkTCP, "1.1.1.1", 443)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	length := binary.BigEndian.Uint16(hdr[:2])
	body := hdr[2:]
	if int(length) != len(body) {
		t.Fatalf("length prefix %d does not match body length %d", length, len(body))
	}
	if body[0] != relayV2Version {
		t.Fatalf("version = %d", body[0])
	}
	if body[1] != relayNetworkTCP {
		t.Fatalf("network = %d", body[1])
	}
	if body[2] != relayAddrFamilyIPv4 {
		t.Fatalf("addr family = %d", body[2])
	}
	if !bytesEqual(body[3:7], []byte{1, 1, 1, 1}) {
		t.Fatalf("addr bytes = %v", body[3:7])
	}
	if binary.BigEndian.Uint16(body[7:9]) != 443 {
		t.Fatalf("port = %v", body[7:9])
	}
}

func TestEncodeRelayV2HeaderRejectsDomain(t *testing.T) {
	if _, err := EncodeRelayV2Header(NetworkTCP, "example.com", 443); err == nil {
		t.Fatal("expected error for non-IP address")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
