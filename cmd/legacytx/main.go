// legacytx CLI - legacy (EIP-155) Ethereum transaction builder
//
// This CLI builds, hashes, signs, decodes and broadcasts replay-protected
// legacy transactions.
//
// Example usage:
//
//	# Print the signing digest of a transfer
//	legacytx hash --nonce 225 --to 0x70997970c51812Dc3a010c7D01b50e0d17Dc79C6 --value 1e10 --chain-id 988242
//
//	# Build from a payment request and sign with a key file
//	legacytx sign --uri "ethereum:0x70997970c51812Dc3a010c7D01b50e0d17Dc79C6@5?value=1e18" --key-file dev.key
//
//	# Deploy init code read from a file and broadcast it
//	legacytx --config legacytx.toml send --data-file contract.bin --gas 500000
//
//	# Inspect a signed envelope
//	legacytx decode 0xf869...
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/suffix-labs/legacytx/pkg/config"
	"github.com/suffix-labs/legacytx/pkg/logging"
)

const (
	clientIdentifier = "legacytx"
	version          = "0.1.0"

	configKey = "config"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:        clientIdentifier,
		Usage:       "build, sign and broadcast legacy Ethereum transactions",
		Version:     version,
		HideVersion: true,
		Writer:      stdout,
		ErrWriter:   stderr,
		Flags: []cli.Flag{
			configFileFlag,
			envFileFlag,
			logLevelFlag,
			logFormatFlag,
		},
		Before: setup,
		Commands: []*cli.Command{
			hashCommand,
			signCommand,
			sendCommand,
			decodeCommand,
			dumpConfigCommand,
			versionCommand,
		},
	}
}

// setup loads the layered configuration, applies the global flag
// overrides and installs the logger. The result is kept in the app
// metadata for the commands.
func setup(ctx *cli.Context) error {
	if err := config.LoadDotEnv(ctx.String(envFileFlag.Name)); err != nil {
		return err
	}
	cfg, err := config.Load(ctx.String(configFileFlag.Name), config.FromEnviron())
	if err != nil {
		return err
	}
	if ctx.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = ctx.String(logLevelFlag.Name)
	}
	if ctx.IsSet(logFormatFlag.Name) {
		cfg.LogFormat = ctx.String(logFormatFlag.Name)
	}

	lc := logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}
	if w := ctx.App.ErrWriter; w != nil && w != os.Stderr {
		_, err = logging.SetupWriter(lc, w)
	} else {
		_, err = logging.Setup(lc)
	}
	if err != nil {
		return err
	}

	if ctx.App.Metadata == nil {
		ctx.App.Metadata = make(map[string]interface{})
	}
	ctx.App.Metadata[configKey] = cfg
	log.Debug("Loaded configuration", "file", ctx.String(configFileFlag.Name), "chainId", cfg.ChainID, "rpc", cfg.RPCURL)
	return nil
}

// settings returns the configuration installed by setup.
func settings(ctx *cli.Context) config.Config {
	if cfg, ok := ctx.App.Metadata[configKey].(config.Config); ok {
		return cfg
	}
	return config.Defaults()
}
