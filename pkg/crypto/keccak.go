package crypto

import (
	"bytes"
	"encoding/hex"
	"hash"

	"golang.org/x/crypto/sha3"
)

// HashLength is the size of a Keccak-256 digest.
const HashLength = 32

// emptyKeccak256 is the legacy Keccak-256 digest of the empty input.
// FIPS 202 SHA3-256 of the same input is a7ffc6f8...434a and must never
// be produced here.
const emptyKeccak256 = "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"

func init() {
	// The legacy variant differs from SHA3-256 only in its padding byte,
	// so a mix-up yields plausible but non-interoperable digests.
	want, _ := hex.DecodeString(emptyKeccak256)
	got := Keccak256()
	if !bytes.Equal(got[:], want) {
		panic("crypto: Keccak-256 implementation is not the legacy (pre-FIPS 202) variant")
	}
}

// NewKeccak256 returns a hash.Hash computing the legacy Keccak-256 digest
// (pre-standard 0x01 padding) used by account-based ledgers.
func NewKeccak256() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// Keccak256 returns the legacy Keccak-256 digest of the concatenated inputs.
func Keccak256(data ...[]byte) [HashLength]byte {
	h := NewKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	var digest [HashLength]byte
	copy(digest[:], h.Sum(nil))
	return digest
}
