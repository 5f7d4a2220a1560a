// Package txn builds, hashes and signs legacy account-ledger transactions
// with chain-id replay protection.
//
// A transaction moves through these roles:
//   - Creator: fills in fields on top of a defaults table and validates them
//   - Signer: hashes the signing preimage and produces (v, r, s)
//   - TxExtractor: serializes the fields plus (v, r, s) into the envelope
//
// The signing preimage is the RLP list
//
//	[nonce, gasPrice, gas, to, value, data, chainID, "", ""]
//
// and the broadcast envelope is
//
//	[nonce, gasPrice, gas, to, value, data, v, r, s]
//
// where v = recoveryID + chainID*2 + 35. Every function in this package is
// pure; a Transaction is immutable once created and safe to share between
// goroutines.
package txn

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// MaxFieldBits is the widest integer accepted for nonce, gas price, gas
// and value.
const MaxFieldBits = 128

// AddressLength is the size of an account address.
const AddressLength = 20

// Address is a 20-byte account address.
type Address [AddressLength]byte

// AddressFromBytes converts b to an Address. It fails with
// ErrInvalidAddressLength unless b is exactly 20 bytes.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, &ValidationError{
			Code:    ErrInvalidAddressLength,
			Field:   "to",
			Message: fmt.Sprintf("address must be %d bytes, got %d", AddressLength, len(b)),
		}
	}
	copy(a[:], b)
	return a, nil
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// Hex returns the lower-case 0x-prefixed hex form.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// Transaction is an unsigned legacy transaction.
//
// Fields are only reachable through accessors which return copies, so a
// Transaction cannot be mutated after Create.
type Transaction struct {
	nonce    uint256.Int
	gasPrice uint256.Int
	gas      uint256.Int
	to       *Address // nil for contract creation
	value    uint256.Int
	data     []byte
	chainID  uint64
}

// Nonce returns the sender's sequence number.
func (tx *Transaction) Nonce() *uint256.Int { return new(uint256.Int).Set(&tx.nonce) }

// GasPrice returns the price per unit of gas.
func (tx *Transaction) GasPrice() *uint256.Int { return new(uint256.Int).Set(&tx.gasPrice) }

// Gas returns the gas limit.
func (tx *Transaction) Gas() *uint256.Int { return new(uint256.Int).Set(&tx.gas) }

// Value returns the amount transferred.
func (tx *Transaction) Value() *uint256.Int { return new(uint256.Int).Set(&tx.value) }

// ChainID returns the replay-protection chain identifier.
func (tx *Transaction) ChainID() uint64 { return tx.chainID }

// To returns a copy of the destination, or nil for contract creation.
func (tx *Transaction) To() *Address {
	if tx.to == nil {
		return nil
	}
	to := *tx.to
	return &to
}

// Data returns a copy of the call data (or init code).
func (tx *Transaction) Data() []byte {
	out := make([]byte, len(tx.data))
	copy(out, tx.data)
	return out
}

// IsContractCreation reports whether the transaction has no destination
// and therefore deploys its data as contract init code.
func (tx *Transaction) IsContractCreation() bool {
	return tx.to == nil
}

// SignatureValues is the output of signing a transaction.
type SignatureValues struct {
	RecoveryID byte        // 0 or 1
	R          [32]byte    // Big-endian r, zero-padded
	S          [32]byte    // Big-endian s, zero-padded, low-S
	V          uint256.Int // RecoveryID + ChainID*2 + 35
}

// ComputeV returns recoveryID + chainID*2 + 35. The arithmetic is 256-bit,
// so no chain id can overflow it.
func ComputeV(chainID uint64, recoveryID byte) *uint256.Int {
	v := new(uint256.Int).SetUint64(chainID)
	v.Lsh(v, 1)
	v.AddUint64(v, 35+uint64(recoveryID))
	return v
}

// ChainIDFromV splits v back into the chain id and recovery id. It fails
// for v < 35, which carries no chain id, and for chain ids wider than 64 bits.
func ChainIDFromV(v *uint256.Int) (chainID uint64, recoveryID byte, err error) {
	if v.LtUint64(35) {
		return 0, 0, &DecodeError{
			Code:    ErrUnprotectedTx,
			Field:   "v",
			Message: fmt.Sprintf("v = %s has no chain id", v.Dec()),
		}
	}
	rest := new(uint256.Int).SubUint64(v, 35)
	recoveryID = byte(rest.Uint64() & 1)
	rest.Rsh(rest, 1)
	if !rest.IsUint64() {
		return 0, 0, &DecodeError{
			Code:    ErrValueOutOfRange,
			Field:   "v",
			Message: "chain id does not fit in 64 bits",
		}
	}
	return rest.Uint64(), recoveryID, nil
}
