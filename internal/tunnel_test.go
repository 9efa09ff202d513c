package internal

import (
	"bytes"
	"io"
	"testing"
)

// fakeDuplex pairs a reader with a writer behind the DuplexStream
// contract, for exercising copyBidirectional without real sockets.
type fakeDuplex struct {
	io.Reader
	io.Writer
}

func (fakeDuplex) Close() error { return nil }

// TestCopyBidirectional is spec §8 property 7: given a scripted inbound
// stream emitting P1 and an outbound scripted to emit P2, the outbound
// receives P1 exactly and the inbound receives P2 (the response preamble
// is a concern of the codec layer, written before the pump starts).
func TestCopyBidirectional(t *testing.T) {
	p1 := []byte("hello from client")
	p2 := []byte("hello from upstream")

	var outboundReceived bytes.Buffer
	var inboundReceived bytes.Buffer

	inbound := fakeDuplex{Reader: bytes.NewReader(p1), Writer: &inboundReceived}
	outbound := fakeDuplex{Reader: bytes.NewReader(p2), Writer: &outboundReceived}

	sent, received, err := copyBidirectional(inbound, outbound)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if sent != int64(len(p1)) {
		t.Fatalf("sent = %d want %d", sent, len(p1))
	}
	if received != int64(len(p2)) {
		t.Fatalf("received = %d want %d", received, len(p2))
	}
	if !bytes.Equal(outboundReceived.Bytes(), p1) {
		t.Fatalf("outbound got %q want %q", outboundReceived.Bytes(), p1)
	}
	if !bytes.Equal(inboundReceived.Bytes(), p2) {
		t.Fatalf("inbound got %q want %q", inboundReceived.Bytes(), p2)
	}
}
