// Package eip681 implements the EIP-681 transaction request URI format
// for plain value transfers.
//
// URI Format:
//
//	ethereum:[pay-]<address>[@<chain id>]?value=<wei>&gas=<limit>&gasPrice=<wei>
//
// Numbers may use scientific notation ("2.014e18") as long as the result
// is a whole number. Function calls ("/transfer?...") and ENS names are not
// supported.
//
// See: https://eips.ethereum.org/EIPS/eip-681
package eip681

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	scheme    = "ethereum:"
	payPrefix = "pay-"
)

var (
	// ErrInvalidScheme is returned for URIs not starting with "ethereum:".
	ErrInvalidScheme = errors.New("eip681: missing ethereum: scheme")
	// ErrUnsupported is returned for function calls and ENS targets.
	ErrUnsupported = errors.New("eip681: unsupported request")
)

// PaymentRequest is a parsed EIP-681 value transfer request.
//
// Nil fields were not present in the URI and are left to the caller.
type PaymentRequest struct {
	Address  common.Address // Recipient
	ChainID  *uint64        // Optional chain id (from "@<id>")
	Value    *uint256.Int   // Optional amount in wei
	Gas      *uint256.Int   // Optional gas limit ("gas" or "gasLimit")
	GasPrice *uint256.Int   // Optional gas price in wei
}

// Parse parses an EIP-681 payment request URI.
//
// Example:
//
//	req, err := eip681.Parse("ethereum:0x70997970c51812Dc3a010c7D01b50e0d17Dc79C6@988242?value=1e10")
func Parse(uri string) (*PaymentRequest, error) {
	if !strings.HasPrefix(uri, scheme) {
		return nil, ErrInvalidScheme
	}
	rest := strings.TrimPrefix(uri[len(scheme):], payPrefix)

	target, query, _ := strings.Cut(rest, "?")
	if strings.Contains(target, "/") {
		return nil, fmt.Errorf("%w: function calls", ErrUnsupported)
	}

	addr, chain, hasChain := strings.Cut(target, "@")
	req := &PaymentRequest{}

	if !common.IsHexAddress(addr) || !strings.HasPrefix(addr, "0x") {
		return nil, fmt.Errorf("%w: target %q is not a 0x address", ErrUnsupported, addr)
	}
	req.Address = common.HexToAddress(addr)
	if hasMixedCase(addr[2:]) && req.Address.Hex() != addr {
		return nil, fmt.Errorf("invalid address checksum: %s", addr)
	}

	if hasChain {
		id, err := strconv.ParseUint(chain, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %q: %w", chain, err)
		}
		req.ChainID = &id
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	fields := []struct {
		names []string
		dst   **uint256.Int
	}{
		{[]string{"value"}, &req.Value},
		{[]string{"gas", "gasLimit"}, &req.Gas},
		{[]string{"gasPrice"}, &req.GasPrice},
	}
	for _, f := range fields {
		for _, name := range f.names {
			raw := params.Get(name)
			if raw == "" {
				continue
			}
			n, err := ParseNumber(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", name, err)
			}
			*f.dst = n
			break
		}
	}

	return req, nil
}

// ParseNumber parses an EIP-681 number: decimal digits with an optional
// fraction and exponent, e.g. "21000", "1e10" or "2.014e18". The result
// must be a non-negative whole number that fits in 256 bits.
func ParseNumber(s string) (*uint256.Int, error) {
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("number cannot be negative: %s", s)
	}

	mantissa, expStr, hasExp := strings.Cut(strings.ToLower(s), "e")
	exp := 0
	if hasExp && expStr != "" {
		e, err := strconv.Atoi(expStr)
		if err != nil || e < 0 || e > 77 {
			return nil, fmt.Errorf("invalid exponent in %q", s)
		}
		exp = e
	}

	whole, frac, _ := strings.Cut(mantissa, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("not a valid number: %q", s)
	}
	digits := whole + frac
	for _, c := range digits {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("not a valid number: %q", s)
		}
	}

	// Shift the fraction into the integer part; leftover fraction digits
	// must all be zero.
	shift := exp - len(frac)
	if shift < 0 {
		dropped := digits[len(digits)+shift:]
		if strings.Trim(dropped, "0") != "" {
			return nil, fmt.Errorf("%q is not a whole number", s)
		}
		digits = digits[:len(digits)+shift]
	} else {
		digits += strings.Repeat("0", shift)
	}

	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return new(uint256.Int), nil
	}
	n, err := uint256.FromDecimal(digits)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", s, err)
	}
	return n, nil
}

func hasMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

// ============================================================================
// Helper functions for creating EIP-681 URIs
// ============================================================================

// Encode creates an EIP-681 URI from a PaymentRequest.
//
// This is the inverse of Parse(). The address is written in its EIP-55
// checksummed form and numbers in plain decimal.
func (req *PaymentRequest) Encode() string {
	uri := scheme + req.Address.Hex()
	if req.ChainID != nil {
		uri += "@" + strconv.FormatUint(*req.ChainID, 10)
	}

	params := url.Values{}
	if req.Value != nil {
		params.Add("value", req.Value.Dec())
	}
	if req.Gas != nil {
		params.Add("gas", req.Gas.Dec())
	}
	if req.GasPrice != nil {
		params.Add("gasPrice", req.GasPrice.Dec())
	}

	if len(params) > 0 {
		uri += "?" + params.Encode()
	}
	return uri
}
