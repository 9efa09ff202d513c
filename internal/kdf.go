package internal

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
)

// kdfRootSalt is V2Ray's fixed root HMAC key for the whole chain.
var kdfRootSalt = []byte("VMess AEAD KDF")

// vmessKDF computes the nested-HMAC-SHA256 chain described by VMess AEAD:
// an HMAC keyed by kdfRootSalt over SHA-256, then re-keyed by each element
// of path in turn (each path element becomes the HMAC key, the previous
// HMAC construction becomes the inner hash), finally fed `key` as the
// message. This mirrors the recursive hasher in the original Rust source
// (hash.rs's RecursiveHash) but uses the standard library's hmac.New, which
// already implements the ipad/opad construction RecursiveHash hand-rolls.
func vmessKDF(key []byte, path ...[]byte) [32]byte {
	newHash := func() hash.Hash { return hmac.New(sha256.New, kdfRootSalt) }
	for _, p := range path {
		prev := newHash
		label := p
		newHash = func() hash.Hash { return hmac.New(prev, label) }
	}
	final := newHash()
	final.Write(key)
	var out [32]byte
	copy(out[:], final.Sum(nil))
	return out
}

// vmessKDFLabels is a small convenience for the common case of string labels.
func vmessKDFLabels(key []byte, labels ...string) [32]byte {
	path := make([][]byte, len(labels))
	for i, l := range labels {
		path[i] = []byte(l)
	}
	return vmessKDF(key, path...)
}
