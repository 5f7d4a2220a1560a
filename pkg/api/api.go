// Package api provides the high-level public API for building and signing
// legacy transactions from string inputs.
//
// This is the main entry point for applications (and the legacytx
// command). It converts hex and decimal strings into a txn.Transaction and
// exposes the pipeline as a handful of functions:
//
//  1. BuildTransaction - Applies defaults, a payment URI and overrides
//  2. Hash - Computes the signing digest
//  3. Sign / SignHex - Produces the broadcastable envelope
//  4. Decode - Parses an envelope and recovers the sender
//  5. ParsePrivateKey - Reads a hex-encoded secret key
package api

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/suffix-labs/legacytx/pkg/crypto"
	"github.com/suffix-labs/legacytx/pkg/eip681"
	"github.com/suffix-labs/legacytx/pkg/txn"
)

// Request describes a transaction the way JSON or command-line input
// carries it. Empty fields fall back to the payment URI, then Defaults.
//
// Integers are decimal ("21000", "1e10") or 0x-prefixed hex.
type Request struct {
	URI      string `json:"uri,omitempty"`      // Optional EIP-681 payment request
	Nonce    string `json:"nonce,omitempty"`    // Sender sequence number
	GasPrice string `json:"gasPrice,omitempty"` // Price per gas unit in wei
	Gas      string `json:"gas,omitempty"`      // Gas limit
	To       string `json:"to,omitempty"`       // 0x address, empty for contract creation
	Value    string `json:"value,omitempty"`    // Amount in wei
	Data     string `json:"data,omitempty"`     // 0x call data or init code
	ChainID  string `json:"chainId,omitempty"`  // Replay-protection chain id
}

// Defaults are applied to fields neither the request nor its URI sets.
type Defaults struct {
	ChainID  uint64
	GasPrice uint64
	Gas      uint64
}

// DefaultDefaults mirrors txn.NewCreator.
func DefaultDefaults() Defaults {
	return Defaults{
		ChainID:  txn.DefaultChainID,
		GasPrice: txn.DefaultGasPrice,
		Gas:      txn.DefaultGas,
	}
}

// ============================================================================
// API Function 1: BuildTransaction
// ============================================================================

// BuildTransaction converts req into an immutable transaction.
//
// Precedence, lowest first: d, the fields of req.URI, the explicit fields
// of req. A nil d means DefaultDefaults.
func BuildTransaction(req *Request, d *Defaults) (*txn.Transaction, error) {
	if d == nil {
		dd := DefaultDefaults()
		d = &dd
	}

	c := txn.NewCreator().
		WithChainID(d.ChainID).
		WithGasPrice(uint256.NewInt(d.GasPrice)).
		WithGas(uint256.NewInt(d.Gas))

	if req.URI != "" {
		pr, err := eip681.Parse(req.URI)
		if err != nil {
			return nil, fmt.Errorf("invalid payment URI: %w", err)
		}
		applyPaymentRequest(c, pr)
	}

	ints := []struct {
		name string
		raw  string
		set  func(*uint256.Int) *txn.Creator
	}{
		{"nonce", req.Nonce, c.WithNonce},
		{"gasPrice", req.GasPrice, c.WithGasPrice},
		{"gas", req.Gas, c.WithGas},
		{"value", req.Value, c.WithValue},
	}
	for _, f := range ints {
		if f.raw == "" {
			continue
		}
		n, err := ParseQuantity(f.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.name, err)
		}
		f.set(n)
	}

	if req.ChainID != "" {
		id, err := ParseQuantity(req.ChainID)
		if err != nil {
			return nil, fmt.Errorf("invalid chainId: %w", err)
		}
		if !id.IsUint64() {
			return nil, fmt.Errorf("invalid chainId: %s does not fit in 64 bits", id.Dec())
		}
		c.WithChainID(id.Uint64())
	}

	if req.To != "" {
		to, err := decodeHex(req.To)
		if err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
		c.WithToBytes(to)
	}

	if req.Data != "" {
		data, err := decodeHex(req.Data)
		if err != nil {
			return nil, fmt.Errorf("invalid data: %w", err)
		}
		c.WithData(data)
	}

	tx, err := c.Create()
	if err != nil {
		return nil, err
	}
	to := "contract creation"
	if addr := tx.To(); addr != nil {
		to = addr.Hex()
	}
	log.Debug("Built transaction", "nonce", tx.Nonce().Dec(), "to", to, "value", tx.Value().Dec(),
		"chainId", tx.ChainID(), "data", len(tx.Data()))
	return tx, nil
}

func applyPaymentRequest(c *txn.Creator, pr *eip681.PaymentRequest) {
	c.WithTo(txn.Address(pr.Address))
	if pr.ChainID != nil {
		c.WithChainID(*pr.ChainID)
	}
	if pr.Value != nil {
		c.WithValue(pr.Value)
	}
	if pr.Gas != nil {
		c.WithGas(pr.Gas)
	}
	if pr.GasPrice != nil {
		c.WithGasPrice(pr.GasPrice)
	}
}

// ============================================================================
// API Function 2: Hash
// ============================================================================

// Hash builds the transaction and returns its signing digest.
func Hash(req *Request, d *Defaults) (common.Hash, error) {
	tx, err := BuildTransaction(req, d)
	if err != nil {
		return common.Hash{}, err
	}
	return common.Hash(tx.Hash()), nil
}

// ============================================================================
// API Function 3: Sign
// ============================================================================

// Sign builds the transaction and signs it with the 32-byte key.
func Sign(req *Request, d *Defaults, key []byte) ([]byte, error) {
	tx, err := BuildTransaction(req, d)
	if err != nil {
		return nil, err
	}
	envelope, err := tx.Sign(key)
	if err != nil {
		return nil, err
	}
	log.Debug("Signed transaction", "hash", common.Hash(txn.TxHash(envelope)), "size", len(envelope))
	return envelope, nil
}

// SignHex is Sign with a 0x-prefixed hex result.
func SignHex(req *Request, d *Defaults, key []byte) (string, error) {
	envelope, err := Sign(req, d, key)
	if err != nil {
		return "", err
	}
	return hexutil.Encode(envelope), nil
}

// ============================================================================
// API Function 4: Decode
// ============================================================================

// Decoded is a human-readable view of a signed envelope.
type Decoded struct {
	Nonce            string          `json:"nonce"`
	GasPrice         string          `json:"gasPrice"`
	Gas              string          `json:"gas"`
	To               *common.Address `json:"to"`
	Value            string          `json:"value"`
	Data             hexutil.Bytes   `json:"data"`
	ChainID          uint64          `json:"chainId"`
	V                string          `json:"v"`
	R                common.Hash     `json:"r"`
	S                common.Hash     `json:"s"`
	Sender           common.Address  `json:"from"`
	Hash             common.Hash     `json:"hash"`
	ContractCreation bool            `json:"contractCreation"`
}

// Decode parses a hex envelope (0x optional) and recovers its sender.
func Decode(envelopeHex string) (*Decoded, error) {
	raw, err := decodeHex(envelopeHex)
	if err != nil {
		return nil, fmt.Errorf("invalid envelope hex: %w", err)
	}
	st, err := txn.DecodeSigned(raw)
	if err != nil {
		return nil, err
	}

	tx := st.Tx
	out := &Decoded{
		Nonce:            tx.Nonce().Dec(),
		GasPrice:         tx.GasPrice().Dec(),
		Gas:              tx.Gas().Dec(),
		Value:            tx.Value().Dec(),
		Data:             tx.Data(),
		ChainID:          tx.ChainID(),
		V:                st.Signature.V.Dec(),
		R:                common.Hash(st.Signature.R),
		S:                common.Hash(st.Signature.S),
		Sender:           common.Address(st.Sender),
		Hash:             common.Hash(st.TxHash),
		ContractCreation: tx.IsContractCreation(),
	}
	if to := tx.To(); to != nil {
		addr := common.Address(*to)
		out.To = &addr
	}
	return out, nil
}

// ============================================================================
// API Function 5: ParsePrivateKey
// ============================================================================

// ParsePrivateKey decodes a 64-digit hex secret key (0x optional,
// surrounding whitespace ignored) and checks that it is a valid scalar.
//
// The caller owns the returned buffer and should wipe it with crypto.Zero.
func ParsePrivateKey(s string) ([]byte, error) {
	key, err := decodeHex(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", crypto.ErrInvalidPrivateKey)
	}
	priv, err := crypto.PrivateKeyFromBytes(key)
	if err != nil {
		crypto.Zero(key)
		return nil, err
	}
	priv.Zero()
	return key, nil
}

// ============================================================================
// Helper functions
// ============================================================================

// ParseQuantity parses a decimal (scientific notation allowed) or
// 0x-prefixed hex unsigned integer of up to 256 bits.
func ParseQuantity(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if !has0xPrefix(s) {
		return eip681.ParseNumber(s)
	}
	if len(s) == 2 {
		return nil, fmt.Errorf("empty hex quantity")
	}
	// uint256.FromHex follows the JSON-RPC quantity rules, which reject
	// leading zeros. Padded input such as 0x00ff is still accepted here.
	digits := strings.TrimLeft(s[2:], "0")
	if digits == "" {
		digits = "0"
	}
	n, err := uint256.FromHex("0x" + digits)
	if err != nil {
		return nil, fmt.Errorf("invalid hex quantity %q: %w", s, err)
	}
	return n, nil
}

func decodeHex(s string) ([]byte, error) {
	if !has0xPrefix(s) {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
