package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	devKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devSender = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	recipient = "0x70997970c51812Dc3a010c7D01b50e0d17Dc79C6"

	knownHash     = "0xe0ae037e1ee9226cad3527c4b7c20c7ef8de58758d6ea1c1c0255acc9fa4dcb7"
	knownEnvelope = "0xf86981e181fa8252089470997970c51812dc3a010c7d01b50e0d17dc79c68502540be40080831e28c7" +
		"a0fc2164b0e8686f9dc692b7ef199b751c908bdcb66cd8c66484eb14e984e8aa19" +
		"a065077a96c4fbc4e82143f6a837a8b87c9b80d697e67266cbf1305f9b46fa529a"
)

var knownTxArgs = []string{"--nonce", "225", "--to", recipient, "--value", "1e10"}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runLogged(t, args...)
	return out, err
}

// runLogged is run that also returns what was logged.
func runLogged(t *testing.T, args ...string) (stdout, logs string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(&out, &errOut)
	err = app.Run(append([]string{clientIdentifier}, args...))
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestHashCommand(t *testing.T) {
	out, err := run(t, append([]string{"hash", "--chain-id", "988242"}, knownTxArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, knownHash+"\n", out)
}

func TestHashUsesConfigDefaults(t *testing.T) {
	cfgFile := writeFile(t, "legacytx.toml", []byte("ChainID = 988242\n"))

	out, err := run(t, append([]string{"--config", cfgFile, "hash"}, knownTxArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, knownHash+"\n", out)

	// An explicit flag beats the config file.
	out, err = run(t, append([]string{"--config", cfgFile, "hash", "--chain-id", "1"}, knownTxArgs...)...)
	require.NoError(t, err)
	assert.NotEqual(t, knownHash+"\n", out)
}

func TestHashFromURI(t *testing.T) {
	uri := "ethereum:" + recipient + "@988242?value=10000000000"
	out, err := run(t, "hash", "--uri", uri, "--nonce", "0xe1")
	require.NoError(t, err)
	assert.Equal(t, knownHash+"\n", out)
}

func TestSignWithKeyFlag(t *testing.T) {
	out, err := run(t, append([]string{"sign", "--chain-id", "988242", "--key", devKeyHex}, knownTxArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, knownEnvelope+"\n", out)
}

func TestSignWithKeyFile(t *testing.T) {
	keyFile := writeFile(t, "dev.key", []byte(devKeyHex+"\n"))

	out, err := run(t, append([]string{"sign", "--chain-id", "988242", "--key-file", keyFile}, knownTxArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, knownEnvelope+"\n", out)
}

func TestSignWithKeyEnv(t *testing.T) {
	t.Setenv("LEGACYTX_PRIVATE_KEY", devKeyHex)

	out, err := run(t, append([]string{"sign", "--chain-id", "988242"}, knownTxArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, knownEnvelope+"\n", out)
}

func TestSignErrors(t *testing.T) {
	t.Setenv("LEGACYTX_PRIVATE_KEY", "")

	_, err := run(t, "sign", "--to", recipient)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing private key")

	_, err = run(t, "sign", "--key", "0x"+strings.Repeat("00", 32))
	require.Error(t, err)

	_, err = run(t, "sign", "--key", devKeyHex, "--to", "0x1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ADDRESS_LENGTH")
}

func TestDataFile(t *testing.T) {
	code := []byte{0x60, 0x80, 0x60, 0x40}
	dataFile := writeFile(t, "init.bin", code)

	fromFile, err := run(t, "hash", "--data-file", dataFile, "--gas", "100000")
	require.NoError(t, err)
	fromFlag, err := run(t, "hash", "--data", hexutil.Encode(code), "--gas", "100000")
	require.NoError(t, err)
	assert.Equal(t, fromFlag, fromFile)

	_, err = run(t, "hash", "--data-file", dataFile, "--data", "0x00")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestDataFileLimit(t *testing.T) {
	cfgFile := writeFile(t, "legacytx.toml", []byte("MaxDataSize = \"1KB\"\n"))
	dataFile := writeFile(t, "big.bin", bytes.Repeat([]byte{0xfe}, 1025))

	_, err := run(t, "--config", cfgFile, "hash", "--data-file", dataFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data limit")

	exact := writeFile(t, "exact.bin", bytes.Repeat([]byte{0xfe}, 1024))
	_, err = run(t, "--config", cfgFile, "hash", "--data-file", exact)
	require.NoError(t, err)
}

func TestDecodeCommand(t *testing.T) {
	out, err := run(t, "decode", knownEnvelope)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, devSender, decoded["from"])
	assert.Equal(t, "225", decoded["nonce"])
	assert.Equal(t, float64(988242), decoded["chainId"])
	assert.Equal(t, false, decoded["contractCreation"])

	_, err = run(t, "decode")
	require.Error(t, err)

	_, err = run(t, "decode", "0xc0")
	require.Error(t, err)
}

// ethService answers eth_sendRawTransaction with the Keccak hash of the input.
type ethService struct {
	received []hexutil.Bytes
}

func (s *ethService) SendRawTransaction(ctx context.Context, input hexutil.Bytes) (common.Hash, error) {
	s.received = append(s.received, input)
	return gethcrypto.Keccak256Hash(input), nil
}

func TestSendCommand(t *testing.T) {
	svc := new(ethService)
	server := rpc.NewServer()
	require.NoError(t, server.RegisterName("eth", svc))
	httpServer := httptest.NewServer(server)
	t.Cleanup(func() {
		httpServer.Close()
		server.Stop()
	})

	args := append([]string{"send", "--chain-id", "988242", "--key", devKeyHex, "--rpc", httpServer.URL}, knownTxArgs...)
	out, logs, err := runLogged(t, args...)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(logs, "Submitted transaction"), logs)

	envelope := hexutil.MustDecode(knownEnvelope)
	require.Len(t, svc.received, 1)
	assert.Equal(t, hexutil.Bytes(envelope), svc.received[0])
	assert.Equal(t, gethcrypto.Keccak256Hash(envelope).Hex()+"\n", out)
}

func TestGlobalFlagErrors(t *testing.T) {
	_, err := run(t, "--log.level", "loud", "version")
	require.Error(t, err)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "version")
	require.Error(t, err)
}

func TestVersionAndDumpConfig(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version: "+version)

	out, err = run(t, "--log.level", "debug", "dumpconfig")
	require.NoError(t, err)
	assert.Contains(t, out, "RPCURL")
}
