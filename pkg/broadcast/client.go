// Package broadcast submits signed envelopes to a node over JSON-RPC.
//
// It performs no nonce or gas discovery; the envelope is sent as-is.
package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/suffix-labs/legacytx/pkg/txn"
)

// DefaultTimeout bounds a single call when the context has no deadline.
const DefaultTimeout = 30 * time.Second

// ErrEmptyEnvelope is returned for a zero-length envelope.
var ErrEmptyEnvelope = errors.New("broadcast: empty envelope")

// Client sends raw transactions to a JSON-RPC endpoint.
type Client struct {
	rpc     *rpc.Client
	timeout time.Duration
}

// Dial connects to an http(s), ws(s) or IPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewClient(c), nil
}

// NewClient wraps an existing RPC client.
func NewClient(c *rpc.Client) *Client {
	return &Client{rpc: c, timeout: DefaultTimeout}
}

// WithTimeout sets the per-call timeout used when ctx has no deadline.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// Close closes the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// SendRawTransaction submits envelope via eth_sendRawTransaction and
// returns the hash reported by the node.
func (c *Client) SendRawTransaction(ctx context.Context, envelope []byte) (common.Hash, error) {
	if len(envelope) == 0 {
		return common.Hash{}, ErrEmptyEnvelope
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	local := common.Hash(txn.TxHash(envelope))
	log.Debug("Sending raw transaction", "hash", local, "size", len(envelope))

	var remote common.Hash
	if err := c.rpc.CallContext(ctx, &remote, "eth_sendRawTransaction", hexutil.Encode(envelope)); err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendRawTransaction: %w", err)
	}
	if remote != local {
		log.Warn("Node reported a different transaction hash", "local", local, "remote", remote)
	}
	log.Info("Submitted transaction", "hash", remote)
	return remote, nil
}
