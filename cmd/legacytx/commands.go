package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/c2h5oh/datasize"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/urfave/cli/v2"

	"github.com/suffix-labs/legacytx/pkg/api"
	"github.com/suffix-labs/legacytx/pkg/broadcast"
	"github.com/suffix-labs/legacytx/pkg/config"
	"github.com/suffix-labs/legacytx/pkg/crypto"
)

var (
	hashCommand = &cli.Command{
		Name:   "hash",
		Usage:  "Print the signing digest of a transaction",
		Flags:  txFlags,
		Action: hashTx,
	}
	signCommand = &cli.Command{
		Name:   "sign",
		Usage:  "Sign a transaction and print the raw envelope",
		Flags:  flagSet(txFlags, keyFlags),
		Action: signTx,
	}
	sendCommand = &cli.Command{
		Name:   "send",
		Usage:  "Sign a transaction and submit it with eth_sendRawTransaction",
		Flags:  flagSet(txFlags, keyFlags, []cli.Flag{rpcFlag}),
		Action: sendTx,
	}
	decodeCommand = &cli.Command{
		Name:      "decode",
		Usage:     "Decode a raw envelope and recover its sender",
		ArgsUsage: "<hex envelope>",
		Action:    decodeTx,
	}
	dumpConfigCommand = &cli.Command{
		Name:   "dumpconfig",
		Usage:  "Print the effective configuration as TOML",
		Action: dumpConfig,
	}
	versionCommand = &cli.Command{
		Name:   "version",
		Usage:  "Print version numbers",
		Action: printVersion,
	}
)

func hashTx(ctx *cli.Context) error {
	cfg := settings(ctx)
	req, err := requestFromFlags(ctx, cfg)
	if err != nil {
		return err
	}
	h, err := api.Hash(req, defaultsFrom(cfg))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, h.Hex())
	return nil
}

func signTx(ctx *cli.Context) error {
	envelope, err := buildAndSign(ctx, settings(ctx))
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(envelope))
	return nil
}

func sendTx(ctx *cli.Context) error {
	cfg := settings(ctx)
	envelope, err := buildAndSign(ctx, cfg)
	if err != nil {
		return err
	}

	url := cfg.RPCURL
	if ctx.IsSet(rpcFlag.Name) {
		url = ctx.String(rpcFlag.Name)
	}
	client, err := broadcast.Dial(ctx.Context, url)
	if err != nil {
		return err
	}
	defer client.Close()

	hash, err := client.WithTimeout(cfg.Timeout.Std()).SendRawTransaction(ctx.Context, envelope)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hash.Hex())
	return nil
}

func decodeTx(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("decode expects exactly one hex envelope")
	}
	decoded, err := api.Decode(ctx.Args().First())
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(decoded, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, string(out))
	return nil
}

func dumpConfig(ctx *cli.Context) error {
	out, err := config.Dump(settings(ctx))
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}

func printVersion(ctx *cli.Context) error {
	fmt.Fprintln(ctx.App.Writer, clientIdentifier)
	fmt.Fprintln(ctx.App.Writer, "Version:", version)
	fmt.Fprintln(ctx.App.Writer, "Architecture:", runtime.GOARCH)
	fmt.Fprintln(ctx.App.Writer, "Go Version:", runtime.Version())
	fmt.Fprintln(ctx.App.Writer, "Operating System:", runtime.GOOS)
	return nil
}

func buildAndSign(ctx *cli.Context, cfg config.Config) ([]byte, error) {
	req, err := requestFromFlags(ctx, cfg)
	if err != nil {
		return nil, err
	}
	key, err := readKey(ctx)
	if err != nil {
		return nil, err
	}
	defer crypto.Zero(key)

	return api.Sign(req, defaultsFrom(cfg), key)
}

func requestFromFlags(ctx *cli.Context, cfg config.Config) (*api.Request, error) {
	req := &api.Request{
		URI:      ctx.String(uriFlag.Name),
		Nonce:    ctx.String(nonceFlag.Name),
		GasPrice: ctx.String(gasPriceFlag.Name),
		Gas:      ctx.String(gasFlag.Name),
		To:       ctx.String(toFlag.Name),
		Value:    ctx.String(valueFlag.Name),
		Data:     ctx.String(dataFlag.Name),
		ChainID:  ctx.String(chainIDFlag.Name),
	}
	if path := ctx.String(dataFileFlag.Name); path != "" {
		if req.Data != "" {
			return nil, fmt.Errorf("--%s and --%s are mutually exclusive", dataFlag.Name, dataFileFlag.Name)
		}
		data, err := readDataFile(path, cfg.MaxDataSize)
		if err != nil {
			return nil, err
		}
		req.Data = hexutil.Encode(data)
	}
	return req, nil
}

func defaultsFrom(cfg config.Config) *api.Defaults {
	return &api.Defaults{
		ChainID:  cfg.ChainID,
		GasPrice: cfg.GasPrice,
		Gas:      cfg.Gas,
	}
}

// readDataFile reads at most limit bytes of calldata from path.
func readDataFile(path string, limit datasize.ByteSize) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n := int64(limit.Bytes())
	data, err := io.ReadAll(io.LimitReader(f, n+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > n {
		return nil, fmt.Errorf("%s is larger than the %s data limit", path, limit.HumanReadable())
	}
	return data, nil
}

// readKey returns the private key from --key-file, or else from --key
// (which also reads LEGACYTX_PRIVATE_KEY). The caller wipes the result.
func readKey(ctx *cli.Context) ([]byte, error) {
	if path := ctx.String(keyFileFlag.Name); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		defer crypto.Zero(raw)
		return api.ParsePrivateKey(string(raw))
	}
	if raw := ctx.String(keyFlag.Name); raw != "" {
		return api.ParsePrivateKey(raw)
	}
	return nil, fmt.Errorf("missing private key: use --%s, --%s or %sPRIVATE_KEY",
		keyFlag.Name, keyFileFlag.Name, config.EnvPrefix)
}
