// Package rlputil adds the pieces the transaction codec needs on top of
// go-ethereum's rlp package: an append-your-fields contract for
// encoding, splitting a list into its encoded items and canonical decoding
// of integers up to 256 bits.
package rlputil

import (
	"errors"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// ErrUint256Overflow is returned by SplitUint256 for integers wider than
// 32 bytes.
var ErrUint256Overflow = errors.New("rlp: value too large for uint256")

// Encodable is implemented by types that append their canonical fields
// to an encoder buffer. Implementations typically open a list, write each
// field in order and close the list.
type Encodable interface {
	AppendRLP(w rlp.EncoderBuffer)
}

// EncodeToBytes returns the encoding of e.
func EncodeToBytes(e Encodable) []byte {
	w := rlp.NewEncoderBuffer(nil)
	defer w.Flush()
	e.AppendRLP(w)
	return w.ToBytes()
}

// ListElements returns the encoded items of the list at the start of b.
// The list must be the only value in b.
func ListElements(b []byte) ([][]byte, error) {
	content, rest, err := rlp.SplitList(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, rlp.ErrMoreThanOneValue
	}
	var elems [][]byte
	for len(content) > 0 {
		_, _, tail, err := rlp.Split(content)
		if err != nil {
			return nil, err
		}
		elems = append(elems, content[:len(content)-len(tail)])
		content = tail
	}
	return elems, nil
}

// SplitUint256 decodes an unsigned integer of up to 256 bits at the
// beginning of b and returns the bytes after it. Leading zero bytes are
// rejected with rlp.ErrCanonInt.
func SplitUint256(b []byte) (x *uint256.Int, rest []byte, err error) {
	content, rest, err := rlp.SplitString(b)
	if err != nil {
		return nil, b, err
	}
	switch {
	case len(content) > 32:
		return nil, b, ErrUint256Overflow
	case len(content) > 0 && content[0] == 0:
		return nil, b, rlp.ErrCanonInt
	}
	return new(uint256.Int).SetBytes(content), rest, nil
}
