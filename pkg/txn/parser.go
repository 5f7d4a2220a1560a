package txn

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/suffix-labs/legacytx/pkg/crypto"
	"github.com/suffix-labs/legacytx/pkg/rlputil"
)

// fieldCount is the number of items in both the preimage and the envelope.
const fieldCount = 9

// SignedTransaction is a decoded envelope together with the values
// recovered from its signature.
type SignedTransaction struct {
	Tx        *Transaction
	Signature SignatureValues
	Sender    Address  // Address recovered from the signature
	TxHash    [32]byte // Keccak-256 of the envelope bytes
}

// DecodeSigned parses a signed envelope, derives the chain id from v and
// recovers the sender.
//
// Only canonical encodings are accepted, and s must be in the lower half
// of the curve order.
func DecodeSigned(envelope []byte) (*SignedTransaction, error) {
	elems, err := splitFields(envelope)
	if err != nil {
		return nil, err
	}

	v, err := decodeInt(elems[6], "v", 256)
	if err != nil {
		return nil, err
	}
	chainID, recid, err := ChainIDFromV(v)
	if err != nil {
		return nil, err
	}

	tx, err := decodeFields(elems, chainID)
	if err != nil {
		return nil, err
	}

	sig := SignatureValues{RecoveryID: recid}
	sig.V.Set(v)
	if sig.R, err = decodeScalar(elems[7], "r"); err != nil {
		return nil, err
	}
	if sig.S, err = decodeScalar(elems[8], "s"); err != nil {
		return nil, err
	}

	sender, err := recoverSender(tx, &sig)
	if err != nil {
		return nil, err
	}

	return &SignedTransaction{
		Tx:        tx,
		Signature: sig,
		Sender:    sender,
		TxHash:    TxHash(envelope),
	}, nil
}

// DecodePreimage parses a signing preimage back into a Transaction. The
// two trailing items must be empty strings.
func DecodePreimage(preimage []byte) (*Transaction, error) {
	elems, err := splitFields(preimage)
	if err != nil {
		return nil, err
	}

	chainID, _, err := rlp.SplitUint64(elems[6])
	if err != nil {
		return nil, &DecodeError{Code: ErrMalformedEncoding, Field: "chainID", Message: "invalid integer", Cause: err}
	}
	for i, name := range []string{"r", "s"} {
		content, _, err := rlp.SplitString(elems[7+i])
		if err != nil || len(content) != 0 {
			return nil, &DecodeError{Code: ErrMalformedEncoding, Field: name, Message: "placeholder must be the empty string", Cause: err}
		}
	}

	return decodeFields(elems, chainID)
}

// Sender recovers the address that signed tx.
func (tx *Transaction) Sender(sig *SignatureValues) (Address, error) {
	return recoverSender(tx, sig)
}

func recoverSender(tx *Transaction, sig *SignatureValues) (Address, error) {
	digest := tx.Hash()
	rs := &crypto.RecoverableSignature{R: sig.R, S: sig.S, RecoveryID: sig.RecoveryID}

	pub, err := crypto.RecoverPublicKey(digest[:], rs)
	if err != nil {
		return Address{}, &SigningError{Code: ErrInvalidSignature, Message: "cannot recover public key", Cause: err}
	}
	if !crypto.VerifySignature(pub, digest[:], rs) {
		return Address{}, &SigningError{Code: ErrInvalidSignature, Message: "signature does not verify (high s?)"}
	}
	return Address(pub.Address()), nil
}

func splitFields(b []byte) ([][]byte, error) {
	elems, err := rlputil.ListElements(b)
	if err != nil {
		return nil, &DecodeError{Code: ErrMalformedEncoding, Message: "not a single RLP list", Cause: err}
	}
	if len(elems) != fieldCount {
		return nil, &DecodeError{
			Code:    ErrMalformedEncoding,
			Message: fmt.Sprintf("expected %d items, got %d", fieldCount, len(elems)),
		}
	}
	return elems, nil
}

// decodeFields decodes the six leading fields shared by the preimage and
// the envelope.
func decodeFields(elems [][]byte, chainID uint64) (*Transaction, error) {
	tx := &Transaction{chainID: chainID}

	ints := []struct {
		name string
		elem []byte
		dst  *uint256.Int
	}{
		{"nonce", elems[0], &tx.nonce},
		{"gasPrice", elems[1], &tx.gasPrice},
		{"gas", elems[2], &tx.gas},
		{"value", elems[4], &tx.value},
	}
	for _, f := range ints {
		x, err := decodeInt(f.elem, f.name, MaxFieldBits)
		if err != nil {
			return nil, err
		}
		f.dst.Set(x)
	}

	to, _, err := rlp.SplitString(elems[3])
	if err != nil {
		return nil, &DecodeError{Code: ErrMalformedEncoding, Field: "to", Message: "invalid string", Cause: err}
	}
	if len(to) != 0 {
		addr, err := AddressFromBytes(to)
		if err != nil {
			return nil, &DecodeError{Code: ErrInvalidAddressLength, Field: "to", Message: "invalid address", Cause: err}
		}
		tx.to = &addr
	}

	data, _, err := rlp.SplitString(elems[5])
	if err != nil {
		return nil, &DecodeError{Code: ErrMalformedEncoding, Field: "data", Message: "invalid string", Cause: err}
	}
	tx.data = append([]byte{}, data...)

	return tx, nil
}

func decodeInt(elem []byte, field string, maxBits int) (*uint256.Int, error) {
	x, _, err := rlputil.SplitUint256(elem)
	if err != nil {
		return nil, &DecodeError{Code: ErrMalformedEncoding, Field: field, Message: "invalid integer", Cause: err}
	}
	if x.BitLen() > maxBits {
		return nil, &DecodeError{
			Code:    ErrValueOutOfRange,
			Field:   field,
			Message: fmt.Sprintf("does not fit in %d bits", maxBits),
		}
	}
	return x, nil
}

func decodeScalar(elem []byte, field string) ([32]byte, error) {
	x, err := decodeInt(elem, field, 256)
	if err != nil {
		return [32]byte{}, err
	}
	if x.IsZero() {
		return [32]byte{}, &DecodeError{Code: ErrInvalidSignature, Field: field, Message: "must be non-zero"}
	}
	return x.Bytes32(), nil
}
