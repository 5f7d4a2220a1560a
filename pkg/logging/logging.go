// Package logging installs the process-wide logger used by the legacytx
// command and its RPC client.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

type Config struct {
	Level  string // trace, debug, info, warn, error, crit
	Format string // terminal, json or logfmt
}

// Setup installs a logger writing to stderr as the default logger. The
// terminal format is colored when stderr is a terminal.
func Setup(cfg Config) (log.Logger, error) {
	var output io.Writer = os.Stderr
	useColor := false
	if cfg.Format == "" || cfg.Format == "terminal" {
		useColor = (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
		if useColor {
			output = colorable.NewColorableStderr()
		}
	}
	return setup(cfg, output, useColor)
}

// SetupWriter is like Setup but writes uncolored output to w.
func SetupWriter(cfg Config, w io.Writer) (log.Logger, error) {
	return setup(cfg, w, false)
}

func setup(cfg Config, output io.Writer, useColor bool) (log.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = log.JSONHandler(output)
	case "logfmt":
		handler = log.LogfmtHandler(output)
	case "", "terminal":
		handler = log.NewTerminalHandler(output, useColor)
	default:
		return nil, fmt.Errorf("unknown log format: %v", cfg.Format)
	}

	glogger := log.NewGlogHandler(handler)
	glogger.Verbosity(level)

	logger := log.NewLogger(glogger)
	log.SetDefault(logger)
	return logger, nil
}

// ParseLevel maps a level name to its slog level. An empty name is info.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "", "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit", "critical":
		return log.LevelCrit, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", raw)
	}
}
