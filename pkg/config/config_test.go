package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, uint64(1), cfg.ChainID)
	assert.Equal(t, uint64(250), cfg.GasPrice)
	assert.Equal(t, uint64(21000), cfg.Gas)
	assert.Equal(t, 128*datasize.KB, cfg.MaxDataSize)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Std())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "legacytx.toml", `
RPCURL = "http://node:8545"
ChainID = 988242
Gas = 840000
MaxDataSize = "64KB"
LogFormat = "json"
Timeout = "5s"
`)

	cfg := Defaults()
	require.NoError(t, LoadFile(path, &cfg))
	assert.Equal(t, "http://node:8545", cfg.RPCURL)
	assert.Equal(t, uint64(988242), cfg.ChainID)
	assert.Equal(t, uint64(840000), cfg.Gas)
	assert.Equal(t, uint64(250), cfg.GasPrice, "unset keys keep defaults")
	assert.Equal(t, 64*datasize.KB, cfg.MaxDataSize)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Second, cfg.Timeout.Std())
}

func TestLoadFileRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "bad.toml", "Nonce = 5\n")
	cfg := Defaults()
	err := LoadFile(path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Nonce")
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Defaults()
	err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"), &cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDump(t *testing.T) {
	cfg := Defaults()
	cfg.ChainID = 5

	out, err := Dump(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "ChainID = 5")
	assert.Contains(t, string(out), "RPCURL = ")
}

func TestApplyEnv(t *testing.T) {
	cfg := Defaults()
	env := EnvMap{
		"LEGACYTX_RPC_URL":       "ws://localhost:8546",
		"LEGACYTX_CHAIN_ID":      "988242",
		"LEGACYTX_GAS_PRICE":     " 1000 ",
		"LEGACYTX_GAS":           "",
		"LEGACYTX_MAX_DATA_SIZE": "1MB",
		"LEGACYTX_LOG_LEVEL":     "debug",
		"LEGACYTX_TIMEOUT":       "2s",
		"RPC_URL":                "ignored without prefix",
	}
	require.NoError(t, ApplyEnv(env, &cfg))

	assert.Equal(t, "ws://localhost:8546", cfg.RPCURL)
	assert.Equal(t, uint64(988242), cfg.ChainID)
	assert.Equal(t, uint64(1000), cfg.GasPrice)
	assert.Equal(t, uint64(21000), cfg.Gas, "empty value keeps default")
	assert.Equal(t, datasize.MB, cfg.MaxDataSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Timeout.Std())
}

func TestApplyEnvErrors(t *testing.T) {
	for key, value := range map[string]string{
		"LEGACYTX_CHAIN_ID":      "mainnet",
		"LEGACYTX_GAS":           "-1",
		"LEGACYTX_MAX_DATA_SIZE": "lots",
		"LEGACYTX_TIMEOUT":       "soon",
	} {
		cfg := Defaults()
		err := ApplyEnv(EnvMap{key: value}, &cfg)
		assert.Error(t, err, key)
	}

	cfg := Defaults()
	assert.Error(t, ApplyEnv(nil, &cfg))
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "loud"
	assert.ErrorContains(t, cfg.Validate(), "unknown log level")

	cfg = Defaults()
	cfg.LogLevel = "WARN"
	assert.NoError(t, cfg.Validate())

	cfg = Defaults()
	cfg.LogFormat = "xml"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.MaxDataSize = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadLayers(t *testing.T) {
	path := writeFile(t, "legacytx.toml", "ChainID = 5\nGas = 30000\n")
	cfg, err := Load(path, EnvMap{"LEGACYTX_CHAIN_ID": "7"})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.ChainID, "env overrides file")
	assert.Equal(t, uint64(30000), cfg.Gas, "file overrides defaults")

	_, err = Load("", EnvMap{"LEGACYTX_LOG_FORMAT": "xml"})
	assert.Error(t, err)

	_, err = Load("", EnvMap{"LEGACYTX_LOG_LEVEL": "loud"})
	assert.ErrorContains(t, err, "unknown log level")
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	const key = "LEGACYTX_DOTENV_TEST_CHAIN"
	t.Cleanup(func() { os.Unsetenv(key) })

	path := writeFile(t, ".env", key+"=988242\n")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "988242", os.Getenv(key))

	value, ok := FromEnviron().Lookup(key)
	assert.True(t, ok)
	assert.Equal(t, "988242", value)
}
