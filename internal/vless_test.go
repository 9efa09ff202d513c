package internal

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

func TestVlessRoundTrip(t *testing.T) {
	id := uuid.New()

	encoded, err := EncodeOutboundRequest(id, NetworkTCP, "1.2.3.4", 443)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	codec := &VlessCodec{UUID: id}
	var ctx RequestContext
	if err := codec.DecodeRequest(bytes.NewReader(encoded), &ctx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ctx.Address != "1.2.3.4" || ctx.Port != 443 || ctx.Network != NetworkTCP {
		t.Fatalf("unexpected ctx: %+v", ctx)
	}

	reencoded, err := EncodeOutboundRequest(id, ctx.Network, ctx.Address, ctx.Port)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		t.Fatalf("round trip mismatch:\n%v\n%v", encoded, reencoded)
	}
}

func TestVlessRoundTripIPv6(t *testing.T) {
	id := uuid.New()

	encoded, err := EncodeOutboundRequest(id, NetworkTCP, "2001:db8::1", 443)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded[21] != 2 {
		t.Fatalf("addr_type = %d, want 2 for a 16-byte address", encoded[21])
	}

	codec := &VlessCodec{UUID: id}
	var ctx RequestContext
	if err := codec.DecodeRequest(bytes.NewReader(encoded), &ctx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ctx.Address != "2001:db8::1" || ctx.Port != 443 {
		t.Fatalf("unexpected ctx: %+v", ctx)
	}
}

func TestVlessUUIDMismatch(t *testing.T) {
	id := uuid.New()
	other := uuid.New()

	encoded, err := EncodeOutboundRequest(id, NetworkTCP, "1.2.3.4", 443)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	codec := &VlessCodec{UUID: other}
	var ctx RequestContext
	if err := codec.DecodeRequest(bytes.NewReader(encoded), &ctx); err == nil {
		t.Fatal("expected uuid mismatch to fail")
	}
}

func TestVlessOutboundReplyStripper(t *testing.T) {
	payload := []byte("hello")
	data := append([]byte{0, 0}, payload...)
	stripper := &VlessOutboundReplyStripper{Reader: bytes.NewReader(data)}

	buf := make([]byte, len(payload))
	n, err := stripper.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(buf[:n], payload) {
		t.Fatalf("got %q want %q", buf[:n], payload)
	}
}
