package main

import (
	"github.com/urfave/cli/v2"

	"github.com/suffix-labs/legacytx/pkg/config"
)

const (
	globalCategory = "GLOBAL"
	txCategory     = "TRANSACTION"
	keyCategory    = "KEY"
)

var (
	configFileFlag = &cli.StringFlag{
		Name:      "config",
		Usage:     "TOML configuration file",
		TakesFile: true,
		Category:  globalCategory,
	}
	envFileFlag = &cli.StringFlag{
		Name:      "env-file",
		Usage:     "File of " + config.EnvPrefix + "* variables loaded before the environment is read",
		Value:     ".env",
		TakesFile: true,
		Category:  globalCategory,
	}
	logLevelFlag = &cli.StringFlag{
		Name:     "log.level",
		Usage:    "Log level (trace, debug, info, warn, error, crit)",
		Category: globalCategory,
	}
	logFormatFlag = &cli.StringFlag{
		Name:     "log.format",
		Usage:    "Log format (terminal, json, logfmt)",
		Category: globalCategory,
	}
)

// Transaction fields. Integers are decimal (scientific notation allowed)
// or 0x-prefixed hex.
var (
	nonceFlag = &cli.StringFlag{
		Name:     "nonce",
		Usage:    "Sender nonce",
		Category: txCategory,
	}
	gasPriceFlag = &cli.StringFlag{
		Name:     "gas-price",
		Usage:    "Gas price in wei (default from config)",
		Category: txCategory,
	}
	gasFlag = &cli.StringFlag{
		Name:     "gas",
		Usage:    "Gas limit (default from config)",
		Category: txCategory,
	}
	toFlag = &cli.StringFlag{
		Name:     "to",
		Usage:    "Recipient address, omit for contract creation",
		Category: txCategory,
	}
	valueFlag = &cli.StringFlag{
		Name:     "value",
		Usage:    "Amount in wei",
		Category: txCategory,
	}
	dataFlag = &cli.StringFlag{
		Name:     "data",
		Usage:    "Hex call data or init code",
		Category: txCategory,
	}
	dataFileFlag = &cli.StringFlag{
		Name:      "data-file",
		Usage:     "Binary file holding call data or init code (bounded by MaxDataSize)",
		TakesFile: true,
		Category:  txCategory,
	}
	chainIDFlag = &cli.StringFlag{
		Name:     "chain-id",
		Usage:    "Replay-protection chain id (default from config)",
		Category: txCategory,
	}
	uriFlag = &cli.StringFlag{
		Name:     "uri",
		Usage:    "EIP-681 payment request; explicit flags override its fields",
		Category: txCategory,
	}
)

var (
	keyFlag = &cli.StringFlag{
		Name:     "key",
		Usage:    "Hex private key",
		EnvVars:  []string{config.EnvPrefix + "PRIVATE_KEY"},
		Category: keyCategory,
	}
	keyFileFlag = &cli.StringFlag{
		Name:      "key-file",
		Usage:     "File holding the hex private key",
		TakesFile: true,
		Category:  keyCategory,
	}
	rpcFlag = &cli.StringFlag{
		Name:     "rpc",
		Usage:    "JSON-RPC endpoint (default from config)",
		Category: globalCategory,
	}
)

var txFlags = []cli.Flag{
	nonceFlag,
	gasPriceFlag,
	gasFlag,
	toFlag,
	valueFlag,
	dataFlag,
	dataFileFlag,
	chainIDFlag,
	uriFlag,
}

var keyFlags = []cli.Flag{
	keyFlag,
	keyFileFlag,
}

func flagSet(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
