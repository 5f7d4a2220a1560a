package txn

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/suffix-labs/legacytx/pkg/crypto"
	"github.com/suffix-labs/legacytx/pkg/rlputil"
)

// TxExtractor serializes a transaction and its signature into the
// broadcastable envelope.
type TxExtractor struct {
	tx  *Transaction
	sig *SignatureValues
}

// NewTxExtractor creates a new Transaction Extractor.
func NewTxExtractor(tx *Transaction, sig *SignatureValues) *TxExtractor {
	return &TxExtractor{tx: tx, sig: sig}
}

// Extract returns the RLP envelope
// [nonce, gasPrice, gas, to, value, data, v, r, s].
//
// v must be consistent with the transaction's chain id and the
// signature's recovery id.
func (e *TxExtractor) Extract() ([]byte, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}
	return rlputil.EncodeToBytes(signedEnvelope{tx: e.tx, sig: e.sig}), nil
}

func (e *TxExtractor) validate() error {
	if e.sig == nil {
		return &SigningError{Code: ErrInvalidSignature, Message: "transaction is not signed"}
	}
	if e.sig.RecoveryID > 1 {
		return &SigningError{
			Code:    ErrInvalidSignature,
			Message: fmt.Sprintf("recovery id %d out of range", e.sig.RecoveryID),
		}
	}
	want := ComputeV(e.tx.chainID, e.sig.RecoveryID)
	if !want.Eq(&e.sig.V) {
		return &SigningError{
			Code:    ErrInvalidSignature,
			Message: fmt.Sprintf("v = %s does not match chain id %d (want %s)", e.sig.V.Dec(), e.tx.chainID, want.Dec()),
		}
	}
	return nil
}

// signedEnvelope shares the field encoding with signingPreimage and
// replaces the trailing items with v, r and s.
type signedEnvelope struct {
	tx  *Transaction
	sig *SignatureValues
}

func (s signedEnvelope) AppendRLP(w rlp.EncoderBuffer) {
	start := w.List()
	s.tx.appendFields(w)
	w.WriteUint256(&s.sig.V)
	// r and s are integers on the wire; leading zero bytes are dropped.
	w.WriteUint256(new(uint256.Int).SetBytes32(s.sig.R[:]))
	w.WriteUint256(new(uint256.Int).SetBytes32(s.sig.S[:]))
	w.ListEnd(start)
}

// Sign signs tx with the 32-byte private key and returns the envelope
// bytes ready for broadcast.
func (tx *Transaction) Sign(key []byte) ([]byte, error) {
	sig, err := tx.SignatureValues(key)
	if err != nil {
		return nil, err
	}
	return NewTxExtractor(tx, sig).Extract()
}

// TxHash returns the transaction id: the Keccak-256 digest of the signed
// envelope.
func TxHash(envelope []byte) [32]byte {
	return crypto.Keccak256(envelope)
}
