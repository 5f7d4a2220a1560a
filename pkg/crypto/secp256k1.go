// Package crypto implements the hashing and secp256k1 signing primitives
// used to authorize legacy account-ledger transactions.
//
// Signatures are recoverable ECDSA signatures: the signer's public key can
// be recovered from the digest, (r, s) and a one-byte recovery id. Nonces
// are derived deterministically per RFC 6979 and s is always normalized to
// the lower half of the curve order, so the same digest and key always
// produce byte-identical signatures.
//
// Key formats:
//   - Private keys: raw 32-byte big-endian scalars in [1, n-1]
//   - Public keys: uncompressed (65 bytes, 0x04 prefix)
//   - Signatures: R (32) || S (32) || recovery id (1)
//   - Addresses: last 20 bytes of Keccak-256 of the uncompressed key without prefix
package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

const (
	// PrivateKeyLength is the size of a raw secp256k1 secret scalar.
	PrivateKeyLength = 32
	// DigestLength is the exact size of a digest that can be signed.
	DigestLength = 32
	// SignatureLength is R || S || recovery id.
	SignatureLength = 64 + 1
	// AddressLength is the size of an account address.
	AddressLength = 20

	// compactSigMagicOffset is the header offset used by compact signatures.
	compactSigMagicOffset = 27
)

var (
	// ErrInvalidPrivateKey is returned for keys that are not 32 bytes, are
	// zero, or are not less than the curve order.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidDigestLength is returned when a digest is not 32 bytes.
	ErrInvalidDigestLength = errors.New("digest must be exactly 32 bytes")

	// ErrInvalidSignature is returned when a signature cannot be used for
	// public key recovery.
	ErrInvalidSignature = errors.New("invalid signature")
)

// PrivateKey wraps secp256k1 private key
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps secp256k1 public key
type PublicKey struct {
	key *secp256k1.PublicKey
}

// RecoverableSignature is an ECDSA signature plus the recovery id needed
// to recover the signing public key.
type RecoverableSignature struct {
	R          [32]byte // Big-endian r, zero-padded to 32 bytes
	S          [32]byte // Big-endian s (low-S normalized), zero-padded to 32 bytes
	RecoveryID byte     // 0 or 1 (2 and 3 are possible only when r overflowed the order)
}

// PrivateKeyFromBytes creates a private key from a raw 32-byte scalar.
//
// The input is not retained; callers may zero it once this returns.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != PrivateKeyLength {
		return nil, fmt.Errorf("%w: must be %d bytes, got %d",
			ErrInvalidPrivateKey, PrivateKeyLength, len(keyBytes))
	}

	var scalar secp256k1.ModNScalar
	overflow := scalar.SetByteSlice(keyBytes)
	if overflow {
		scalar.Zero()
		return nil, fmt.Errorf("%w: scalar is not less than the curve order", ErrInvalidPrivateKey)
	}
	if scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar is zero", ErrInvalidPrivateKey)
	}

	key := secp256k1.NewPrivateKey(&scalar)
	scalar.Zero()
	return &PrivateKey{key: key}, nil
}

// SignRecoverable signs a 32-byte digest and returns (r, s, recovery id).
//
// Signing is deterministic (RFC 6979) and s is always in the lower half
// of the curve order.
func (pk *PrivateKey) SignRecoverable(digest []byte) (*RecoverableSignature, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDigestLength, len(digest))
	}

	// Compact format: [27 + recid] || R || S. Uncompressed keys, so no +4.
	compact := ecdsa.SignCompact(pk.key, digest, false)

	sig := &RecoverableSignature{RecoveryID: compact[0] - compactSigMagicOffset}
	copy(sig.R[:], compact[1:33])
	copy(sig.S[:], compact[33:65])
	return sig, nil
}

// PublicKey derives the public key
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Zero overwrites the secret scalar. The key must not be used afterwards.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// RecoverPublicKey recovers the public key that produced sig over digest.
func RecoverPublicKey(digest []byte, sig *RecoverableSignature) (*PublicKey, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidDigestLength, len(digest))
	}
	if sig.RecoveryID > 3 {
		return nil, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig.RecoveryID)
	}

	var compact [SignatureLength]byte
	compact[0] = compactSigMagicOffset + sig.RecoveryID
	copy(compact[1:33], sig.R[:])
	copy(compact[33:], sig.S[:])

	pub, _, err := ecdsa.RecoverCompact(compact[:], digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return &PublicKey{key: pub}, nil
}

// VerifySignature reports whether sig is a valid low-S signature of digest
// by pubkey. The recovery id is ignored.
func VerifySignature(pubkey *PublicKey, digest []byte, sig *RecoverableSignature) bool {
	if len(digest) != DigestLength {
		return false
	}
	var r, s secp256k1.ModNScalar
	if r.SetByteSlice(sig.R[:]) || s.SetByteSlice(sig.S[:]) {
		return false
	}
	if s.IsOverHalfOrder() {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(digest, pubkey.key)
}

// SerializeUncompressed returns the 65-byte 0x04-prefixed public key.
func (pub *PublicKey) SerializeUncompressed() [65]byte {
	var result [65]byte
	copy(result[:], pub.key.SerializeUncompressed())
	return result
}

// Address returns the account address controlled by this key.
func (pub *PublicKey) Address() [AddressLength]byte {
	uncompressed := pub.SerializeUncompressed()
	digest := Keccak256(uncompressed[1:])

	var addr [AddressLength]byte
	copy(addr[:], digest[HashLength-AddressLength:])
	return addr
}

// Zero overwrites b. Use it to wipe secret key buffers after signing.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
