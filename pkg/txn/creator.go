package txn

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Defaults applied by NewCreator for every field the caller leaves unset.
const (
	DefaultNonce    = 0
	DefaultGasPrice = 250
	DefaultGas      = 21000
	DefaultValue    = 0
	DefaultChainID  = 1
)

// Creator assembles a Transaction from a defaults table plus overrides.
//
// Setters never fail; the first invalid input is remembered and reported
// by Create, so a chain of With* calls can be written without checks:
//
//	tx, err := txn.NewCreator().
//		WithNonce(uint256.NewInt(225)).
//		WithTo(to).
//		WithChainID(988242).
//		Create()
type Creator struct {
	nonce    uint256.Int
	gasPrice uint256.Int
	gas      uint256.Int
	to       *Address
	value    uint256.Int
	data     []byte
	chainID  uint64

	err error // first setter error, returned by Create
}

// NewCreator creates a Creator holding the default field values:
// nonce 0, gas price 250, gas 21000, no destination, value 0, empty data
// and chain id 1.
func NewCreator() *Creator {
	c := &Creator{chainID: DefaultChainID}
	c.nonce.SetUint64(DefaultNonce)
	c.gasPrice.SetUint64(DefaultGasPrice)
	c.gas.SetUint64(DefaultGas)
	c.value.SetUint64(DefaultValue)
	return c
}

// WithNonce overrides the nonce. A nil n is treated as zero.
func (c *Creator) WithNonce(n *uint256.Int) *Creator {
	setInt(&c.nonce, n)
	return c
}

// WithGasPrice overrides the gas price. A nil p is treated as zero.
func (c *Creator) WithGasPrice(p *uint256.Int) *Creator {
	setInt(&c.gasPrice, p)
	return c
}

// WithGas overrides the gas limit. A nil g is treated as zero.
func (c *Creator) WithGas(g *uint256.Int) *Creator {
	setInt(&c.gas, g)
	return c
}

// WithValue overrides the transferred value. A nil v is treated as zero.
func (c *Creator) WithValue(v *uint256.Int) *Creator {
	setInt(&c.value, v)
	return c
}

// WithTo sets the destination address.
func (c *Creator) WithTo(to Address) *Creator {
	c.to = &to
	return c
}

// WithToBytes sets the destination from raw bytes. Anything other than
// 20 bytes makes Create fail with ErrInvalidAddressLength.
func (c *Creator) WithToBytes(b []byte) *Creator {
	to, err := AddressFromBytes(b)
	if err != nil {
		c.fail(err)
		return c
	}
	return c.WithTo(to)
}

// WithContractCreation clears the destination.
func (c *Creator) WithContractCreation() *Creator {
	c.to = nil
	return c
}

// WithData sets the call data. The slice is copied.
func (c *Creator) WithData(data []byte) *Creator {
	c.data = append([]byte(nil), data...)
	return c
}

// WithChainID overrides the replay-protection chain id.
func (c *Creator) WithChainID(id uint64) *Creator {
	c.chainID = id
	return c
}

// Create validates the accumulated fields and returns an immutable
// Transaction.
//
// Integer fields wider than 128 bits are rejected with ErrValueOutOfRange.
func (c *Creator) Create() (*Transaction, error) {
	if c.err != nil {
		return nil, c.err
	}

	fields := []struct {
		name string
		v    *uint256.Int
	}{
		{"nonce", &c.nonce},
		{"gasPrice", &c.gasPrice},
		{"gas", &c.gas},
		{"value", &c.value},
	}
	for _, f := range fields {
		if err := checkWidth(f.name, f.v); err != nil {
			return nil, err
		}
	}

	tx := &Transaction{
		to:      c.To(),
		data:    append([]byte{}, c.data...),
		chainID: c.chainID,
	}
	tx.nonce.Set(&c.nonce)
	tx.gasPrice.Set(&c.gasPrice)
	tx.gas.Set(&c.gas)
	tx.value.Set(&c.value)
	return tx, nil
}

// To returns a copy of the destination currently set, or nil.
func (c *Creator) To() *Address {
	if c.to == nil {
		return nil
	}
	to := *c.to
	return &to
}

func (c *Creator) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func setInt(dst, src *uint256.Int) {
	if src == nil {
		dst.Clear()
		return
	}
	dst.Set(src)
}

func checkWidth(field string, v *uint256.Int) error {
	if v.BitLen() > MaxFieldBits {
		return &ValidationError{
			Code:    ErrValueOutOfRange,
			Field:   field,
			Message: fmt.Sprintf("%s does not fit in %d bits", v.Dec(), MaxFieldBits),
		}
	}
	return nil
}
