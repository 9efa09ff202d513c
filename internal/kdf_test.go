package internal

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
)

// TestVmessKDFVector checks the fixed KDF test vector from spec §8
// property 1: kdf(MD5(uuid || legacy constant), ["AES Auth ID Encryption"])
// truncated to 16 bytes must match a known V2Ray-compatible output.
func TestVmessKDFVector(t *testing.T) {
	id, err := uuid.Parse("96850032-1b92-46e9-a4f2-b99631456894")
	if err != nil {
		t.Fatalf("parse uuid: %v", err)
	}
	key := vmessAuthKey(id)

	got := vmessKDFLabels(key, "AES Auth ID Encryption")
	want := [16]byte{117, 82, 144, 159, 147, 65, 74, 253, 91, 74, 70, 84, 114, 118, 203, 30}

	if !bytes.Equal(got[:16], want[:]) {
		t.Fatalf("kdf vector mismatch: got %v want %v", got[:16], want)
	}
}
