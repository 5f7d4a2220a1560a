package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEth serves eth_sendRawTransaction and records what it received.
type fakeEth struct {
	mu       sync.Mutex
	received []hexutil.Bytes
	reply    *common.Hash // overrides the computed hash when set
	fail     error
	block    chan struct{}
}

func (f *fakeEth) SendRawTransaction(ctx context.Context, input hexutil.Bytes) (common.Hash, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return common.Hash{}, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, input)
	if f.fail != nil {
		return common.Hash{}, f.fail
	}
	if f.reply != nil {
		return *f.reply, nil
	}
	return crypto.Keccak256Hash(input), nil
}

func newTestClient(t *testing.T, svc *fakeEth) *Client {
	t.Helper()
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	c := NewClient(rpc.DialInProc(server))
	t.Cleanup(func() {
		c.Close()
		server.Stop()
	})
	return c
}

var envelope = hexutil.MustDecode("0xf84c8081fa82520880808026" +
	"a0efdac3ce69c37c5f65357e385eed38ccb3f45ea5409d0694e51803718d41629f" +
	"a0023b35bdc01fa578288e0339688912aab2a4f6b6b89ebcbbaf40250325924f6c")

func TestSendRawTransaction(t *testing.T) {
	svc := &fakeEth{}
	c := newTestClient(t, svc)

	hash, err := c.SendRawTransaction(context.Background(), envelope)
	require.NoError(t, err)
	assert.Equal(t, crypto.Keccak256Hash(envelope), hash)

	require.Len(t, svc.received, 1)
	assert.Equal(t, hexutil.Bytes(envelope), svc.received[0])
}

func TestSendRawTransactionReturnsRemoteHash(t *testing.T) {
	other := common.HexToHash("0x01")
	c := newTestClient(t, &fakeEth{reply: &other})

	hash, err := c.SendRawTransaction(context.Background(), envelope)
	require.NoError(t, err)
	assert.Equal(t, other, hash)
}

func TestSendRawTransactionNodeError(t *testing.T) {
	c := newTestClient(t, &fakeEth{fail: errors.New("nonce too low")})

	_, err := c.SendRawTransaction(context.Background(), envelope)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce too low")
}

func TestSendRawTransactionEmpty(t *testing.T) {
	svc := &fakeEth{}
	c := newTestClient(t, svc)

	_, err := c.SendRawTransaction(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyEnvelope)
	assert.Empty(t, svc.received)
}

func TestSendRawTransactionTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c := newTestClient(t, &fakeEth{block: block}).WithTimeout(50 * time.Millisecond)

	_, err := c.SendRawTransaction(context.Background(), envelope)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDialInvalidURL(t *testing.T) {
	_, err := Dial(context.Background(), "ftp://127.0.0.1:1")
	assert.Error(t, err)
}
