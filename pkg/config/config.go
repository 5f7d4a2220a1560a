// Package config holds the settings of the legacytx command: where to
// broadcast, which defaults to apply to unset transaction fields and how
// to log.
//
// Settings are layered: Defaults, then an optional TOML file, then
// LEGACYTX_* environment variables (optionally seeded from a .env file).
// Command-line flags are applied last by the caller.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/joho/godotenv"
	"github.com/naoina/toml"

	"github.com/suffix-labs/legacytx/pkg/logging"
	"github.com/suffix-labs/legacytx/pkg/txn"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "LEGACYTX_"

// Config is the outer-layer configuration. The transaction core never
// reads it; it only supplies defaults to the Creator.
type Config struct {
	RPCURL      string            // JSON-RPC endpoint used by "send"
	ChainID     uint64            // Chain id applied when no flag or URI sets one
	GasPrice    uint64            // Gas price applied when unset
	Gas         uint64            // Gas limit applied when unset
	MaxDataSize datasize.ByteSize // Upper bound for --data-file contents
	LogLevel    string            // trace, debug, info, warn, error, crit
	LogFormat   string            // terminal, json or logfmt
	Timeout     Duration          // Bound on a single RPC round trip
}

// Duration is a time.Duration that reads and writes "30s" style strings
// in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Defaults returns the built-in configuration. Transaction defaults match
// txn.NewCreator.
func Defaults() Config {
	return Config{
		RPCURL:      "http://127.0.0.1:8545",
		ChainID:     txn.DefaultChainID,
		GasPrice:    txn.DefaultGasPrice,
		Gas:         txn.DefaultGas,
		MaxDataSize: 128 * datasize.KB,
		LogLevel:    "info",
		LogFormat:   "terminal",
		Timeout:     Duration(30 * time.Second),
	}
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

// LoadFile overlays the TOML file at path onto cfg. Unknown keys are
// rejected.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(path + ", " + err.Error())
	}
	return err
}

// Dump renders cfg as TOML.
func Dump(cfg Config) ([]byte, error) {
	return tomlSettings.Marshal(&cfg)
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

// ApplyEnv overlays LEGACYTX_* variables from source onto cfg. Empty
// values are ignored.
func ApplyEnv(source EnvSource, cfg *Config) error {
	if source == nil {
		return errors.New("env source is required")
	}

	if raw, ok := lookup(source, "RPC_URL"); ok {
		cfg.RPCURL = raw
	}
	if err := parseUintEnv(source, "CHAIN_ID", &cfg.ChainID); err != nil {
		return err
	}
	if err := parseUintEnv(source, "GAS_PRICE", &cfg.GasPrice); err != nil {
		return err
	}
	if err := parseUintEnv(source, "GAS", &cfg.Gas); err != nil {
		return err
	}
	if raw, ok := lookup(source, "MAX_DATA_SIZE"); ok {
		if err := cfg.MaxDataSize.UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("invalid %sMAX_DATA_SIZE: %w", EnvPrefix, err)
		}
	}
	if raw, ok := lookup(source, "LOG_LEVEL"); ok {
		cfg.LogLevel = raw
	}
	if raw, ok := lookup(source, "LOG_FORMAT"); ok {
		cfg.LogFormat = raw
	}
	if raw, ok := lookup(source, "TIMEOUT"); ok {
		if err := cfg.Timeout.UnmarshalText([]byte(raw)); err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", EnvPrefix, err)
		}
	}
	return nil
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "terminal", "json", "logfmt":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.MaxDataSize == 0 {
		return errors.New("max data size must be positive")
	}
	return nil
}

// Load builds a Config from Defaults, the optional TOML file and env.
func Load(file string, env EnvSource) (Config, error) {
	cfg := Defaults()
	if file != "" {
		if err := LoadFile(file, &cfg); err != nil {
			return Config{}, err
		}
	}
	if env != nil {
		if err := ApplyEnv(env, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func lookup(source EnvSource, name string) (string, bool) {
	raw, ok := source.Lookup(EnvPrefix + name)
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

func parseUintEnv(source EnvSource, name string, dst *uint64) error {
	raw, ok := lookup(source, name)
	if !ok {
		return nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", EnvPrefix, name, err)
	}
	*dst = value
	return nil
}
