package txn

import (
	"errors"
	"fmt"
)

// ValidationError is returned when a transaction field cannot be
// represented on the wire.
//
// It is raised at construction time so that no Transaction ever holds an
// out-of-range value.
type ValidationError struct {
	Code    string // Error code (e.g., ErrValueOutOfRange)
	Field   string // Name of the offending field
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s] %s: %s", e.Code, e.Field, e.Message)
}

// SigningError is returned when a signature cannot be produced or
// attached to a transaction.
type SigningError struct {
	Code    string // Error code (e.g., ErrInvalidPrivateKey)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *SigningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("signing error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("signing error [%s]: %s", e.Code, e.Message)
}

func (e *SigningError) Unwrap() error {
	return e.Cause
}

// DecodeError is returned when signed envelope or preimage bytes cannot be
// parsed back into a transaction.
type DecodeError struct {
	Code    string // Error code (e.g., ErrMalformedEncoding)
	Field   string // Field being decoded, empty for the outer list
	Message string // Human-readable error message
	Cause   error  // Underlying decode error (if any)
}

func (e *DecodeError) Error() string {
	where := e.Field
	if where == "" {
		where = "transaction"
	}
	if e.Cause != nil {
		return fmt.Sprintf("decode error [%s] %s: %s: %v", e.Code, where, e.Message, e.Cause)
	}
	return fmt.Sprintf("decode error [%s] %s: %s", e.Code, where, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Error codes returned by this package.
const (
	ErrInvalidAddressLength = "INVALID_ADDRESS_LENGTH"  // Destination is not exactly 20 bytes
	ErrValueOutOfRange      = "VALUE_OUT_OF_RANGE"      // Integer field does not fit in 128 bits
	ErrInvalidPrivateKey    = "INVALID_PRIVATE_KEY"     // Key is not a valid secp256k1 scalar
	ErrDigestLengthMismatch = "DIGEST_LENGTH_MISMATCH"  // Digest handed to the signer is not 32 bytes
	ErrInvalidSignature     = "INVALID_SIGNATURE"       // Signature values do not match the transaction
	ErrMalformedEncoding    = "MALFORMED_ENCODING"      // Bytes are not a canonical 9-item RLP list
	ErrUnprotectedTx        = "UNPROTECTED_TRANSACTION" // v carries no chain id (v < 35)
)

// HasCode reports whether err, or any error it wraps, is one of this
// package's typed errors carrying the given code.
func HasCode(err error, code string) bool {
	var verr *ValidationError
	if errors.As(err, &verr) && verr.Code == code {
		return true
	}
	var serr *SigningError
	if errors.As(err, &serr) && serr.Code == code {
		return true
	}
	var derr *DecodeError
	if errors.As(err, &derr) && derr.Code == code {
		return true
	}
	return false
}
