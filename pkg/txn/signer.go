package txn

import (
	"errors"

	"github.com/suffix-labs/legacytx/pkg/crypto"
)

// Signer produces the (v, r, s) values authorizing a transaction.
//
// The private key is parsed per call and wiped before Sign returns; the
// Signer never keeps key material.
type Signer struct {
	tx *Transaction
}

// NewSigner creates a new Signer for tx.
func NewSigner(tx *Transaction) *Signer {
	return &Signer{tx: tx}
}

// Sign hashes the signing preimage and signs it with the 32-byte private
// key. The caller's key buffer is neither retained nor modified.
func (s *Signer) Sign(key []byte) (*SignatureValues, error) {
	digest := s.tx.Hash()
	return SignDigest(digest[:], s.tx.chainID, key)
}

// SignDigest signs a 32-byte digest and folds chainID into v.
//
// Errors are *SigningError with code ErrInvalidPrivateKey or
// ErrDigestLengthMismatch; the underlying crypto sentinel is wrapped.
func SignDigest(digest []byte, chainID uint64, key []byte) (*SignatureValues, error) {
	if len(digest) != crypto.DigestLength {
		return nil, &SigningError{
			Code:    ErrDigestLengthMismatch,
			Message: "digest must be 32 bytes",
			Cause:   crypto.ErrInvalidDigestLength,
		}
	}

	priv, err := crypto.PrivateKeyFromBytes(key)
	if err != nil {
		return nil, &SigningError{
			Code:    ErrInvalidPrivateKey,
			Message: "cannot parse private key",
			Cause:   err,
		}
	}
	defer priv.Zero()

	sig, err := priv.SignRecoverable(digest)
	if err != nil {
		code := ErrInvalidSignature
		if errors.Is(err, crypto.ErrInvalidDigestLength) {
			code = ErrDigestLengthMismatch
		}
		return nil, &SigningError{Code: code, Message: "signing failed", Cause: err}
	}

	out := &SignatureValues{
		RecoveryID: sig.RecoveryID,
		R:          sig.R,
		S:          sig.S,
	}
	out.V.Set(ComputeV(chainID, sig.RecoveryID))
	return out, nil
}

// SignatureValues signs tx with key and returns (v, r, s).
func (tx *Transaction) SignatureValues(key []byte) (*SignatureValues, error) {
	return NewSigner(tx).Sign(key)
}
