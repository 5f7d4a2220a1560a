package txn

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/suffix-labs/legacytx/pkg/crypto"
	"github.com/suffix-labs/legacytx/pkg/rlputil"
)

// appendFields writes the six transaction fields shared by the preimage
// and the envelope. A missing destination is written as the empty string.
func (tx *Transaction) appendFields(w rlp.EncoderBuffer) {
	w.WriteUint256(&tx.nonce)
	w.WriteUint256(&tx.gasPrice)
	w.WriteUint256(&tx.gas)
	if tx.to != nil {
		w.WriteBytes(tx.to[:])
	} else {
		w.WriteBytes(nil)
	}
	w.WriteUint256(&tx.value)
	w.WriteBytes(tx.data)
}

// signingPreimage is the 9-item list hashed for signing: the six fields,
// then chainID and two empty strings in place of v, r and s.
type signingPreimage struct {
	tx *Transaction
}

func (p signingPreimage) AppendRLP(w rlp.EncoderBuffer) {
	start := w.List()
	p.tx.appendFields(w)
	w.WriteUint64(p.tx.chainID)
	w.WriteBytes(nil)
	w.WriteBytes(nil)
	w.ListEnd(start)
}

// SigningPreimage returns the RLP bytes whose Keccak-256 digest is signed.
func (tx *Transaction) SigningPreimage() []byte {
	return rlputil.EncodeToBytes(signingPreimage{tx: tx})
}

// Hash returns the Keccak-256 digest of the signing preimage.
func (tx *Transaction) Hash() [32]byte {
	return crypto.Keccak256(tx.SigningPreimage())
}
