package internal

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
)

// encodeVmessRequest builds a valid VMess AEAD request frame the way a
// real client would, for round-tripping against VmessCodec.DecodeRequest.
func encodeVmessRequest(t *testing.T, id uuid.UUID, respAuth byte, dataKey, dataIV [16]byte, addr string, port uint16) []byte {
	t.Helper()
	authKey := vmessAuthKey(id)

	var authID [16]byte
	var nonce [8]byte
	rand.Read(authID[:])
	rand.Read(nonce[:])

	raw, addrType, err := writeAddrRaw(addr)
	if err != nil {
		t.Fatalf("writeAddrRaw: %v", err)
	}

	header := new(bytes.Buffer)
	header.WriteByte(1) // version
	header.Write(dataIV[:])
	header.Write(dataKey[:])
	header.Write([]byte{respAuth, 0, 0, 0, 1}) // opts/enc/reserved/command=1(tcp)
	portBuf := make([]byte, 2)
	binary.BigEndian.PutUint16(portBuf, port)
	header.Write(portBuf)
	header.WriteByte(byte(addrType))
	header.Write(raw)

	lk := vmessKDFLabels(authKey, "VMess Header AEAD Key_Length", string(authID[:]), string(nonce[:]))
	ln := vmessKDFLabels(authKey, "VMess Header AEAD Nonce_Length", string(authID[:]), string(nonce[:]))
	pk := vmessKDFLabels(authKey, "VMess Header AEAD Key", string(authID[:]), string(nonce[:]))
	pn := vmessKDFLabels(authKey, "VMess Header AEAD Nonce", string(authID[:]), string(nonce[:]))

	lenPlain := make([]byte, 2)
	binary.BigEndian.PutUint16(lenPlain, uint16(header.Len()))
	encLen, err := aesGCMSeal(lk[:16], ln[:12], authID[:], lenPlain)
	if err != nil {
		t.Fatalf("seal length: %v", err)
	}
	encHeader, err := aesGCMSeal(pk[:16], pn[:12], authID[:], header.Bytes())
	if err != nil {
		t.Fatalf("seal header: %v", err)
	}

	out := new(bytes.Buffer)
	out.Write(authID[:])
	out.Write(encLen)
	out.Write(nonce[:])
	out.Write(encHeader)
	return out.Bytes()
}

func TestVmessRoundTrip(t *testing.T) {
	id := uuid.New()
	var dataKey, dataIV [16]byte
	rand.Read(dataKey[:])
	rand.Read(dataIV[:])

	frame := encodeVmessRequest(t, id, 0x42, dataKey, dataIV, "8.8.8.8", 443)

	codec := &VmessCodec{UUID: id}
	var ctx RequestContext
	if err := codec.DecodeRequest(bytes.NewReader(frame), &ctx); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ctx.Address != "8.8.8.8" || ctx.Port != 443 || ctx.Network != NetworkTCP {
		t.Fatalf("unexpected ctx: %+v", ctx)
	}

	var resp bytes.Buffer
	if err := codec.WriteResponsePreamble(&resp); err != nil {
		t.Fatalf("response preamble: %v", err)
	}
	if resp.Len() == 0 {
		t.Fatal("expected non-empty response preamble")
	}
}

func TestVmessTamperDetection(t *testing.T) {
	id := uuid.New()
	var dataKey, dataIV [16]byte
	rand.Read(dataKey[:])
	rand.Read(dataIV[:])

	cases := []struct {
		name    string
		mutate  func([]byte) []byte
	}{
		{"auth_id", func(b []byte) []byte { b[0] ^= 0xff; return b }},
		{"length_ciphertext", func(b []byte) []byte { b[16] ^= 0xff; return b }},
		{"payload_ciphertext", func(b []byte) []byte { b[len(b)-1] ^= 0xff; return b }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			frame := encodeVmessRequest(t, id, 0x42, dataKey, dataIV, "8.8.8.8", 443)
			tampered := tc.mutate(frame)

			codec := &VmessCodec{UUID: id}
			var ctx RequestContext
			if err := codec.DecodeRequest(bytes.NewReader(tampered), &ctx); err == nil {
				t.Fatal("expected decode to fail on tampered frame")
			}
		})
	}
}
