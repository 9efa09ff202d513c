package internal

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"
)

const dohEndpoint = "https://1.1.1.1/dns-query"

// mockUDPConn implements spec §4.11's MockUDP outbound: every write is a
// DNS-over-HTTPS POST, and the response lands in a single-slot buffer a
// blocked reader wakes up to drain. Grounded on the single-slot
// waiter/waker shape of SUPPLEMENTED FEATURES in SPEC_FULL.md (derived
// from original_source's mock_udp/{outbound,doh}.rs), expressed with
// sync.Cond instead of a registered async waker since this core has no
// executor of its own to register one with.
type mockUDPConn struct {
	client *http.Client

	mu     sync.Mutex
	cond   *sync.Cond
	slot   []byte
	hasMsg bool
	closed bool
}

func newMockUDPConn() *mockUDPConn {
	c := &mockUDPConn{client: http.DefaultClient}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Write POSTs p to the DoH endpoint and stages the response body,
// overwriting whatever was previously staged. Caller discipline assumes
// one in-flight request per stream, per spec §4.11.
func (c *mockUDPConn) Write(p []byte) (int, error) {
	req, err := http.NewRequest(http.MethodPost, dohEndpoint, bytes.NewReader(p))
	if err != nil {
		return 0, fmt.Errorf("mockudp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/dns-message")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, wrapErr(KindUpstream, "mockudp.write", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, wrapErr(KindUpstream, "mockudp.write.body", err)
	}

	c.mu.Lock()
	c.slot = body
	c.hasMsg = true
	c.cond.Signal()
	c.mu.Unlock()

	return len(p), nil
}

// Read blocks until a DoH response is staged, then drains up to len(p)
// bytes of it in one go.
func (c *mockUDPConn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for !c.hasMsg && !c.closed {
		c.cond.Wait()
	}
	if c.closed && !c.hasMsg {
		return 0, io.EOF
	}
	n := copy(p, c.slot)
	c.slot = c.slot[n:]
	if len(c.slot) == 0 {
		c.hasMsg = false
	}
	return n, nil
}

func (c *mockUDPConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.cond.Broadcast()
	c.mu.Unlock()
	return nil
}
