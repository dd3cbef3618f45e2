/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pioneers/typpo/pkg/config"
	"github.com/pioneers/typpo/pkg/factory"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Config is a set of flags selecting the codec configuration.
var Config = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "path to the typpo config file",
	},
	cli.StringFlag{
		Name:  "target, t",
		Usage: "target architecture, overrides the config (e.g. ARM, AVR, X86_64)",
	},
	cli.StringSliceFlag{
		Name:  "type-file, f",
		Usage: "type definitions file, may be repeated; replaces the config list",
	},
	cli.BoolFlag{
		Name:  "debug, d",
		Usage: "enable debug logging",
	},
}

// GetConfigFromContext loads the config named by the --config flag (or the
// defaults) and applies the --target and --type-file overrides.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		cfg, err = config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	if target := ctx.String("target"); target != "" {
		cfg.Codec.TargetType = target
	}
	if files := ctx.StringSlice("type-file"); len(files) != 0 {
		cfg.Codec.TypeFiles = files
	}
	if len(cfg.Codec.TypeFiles) == 0 {
		return config.Config{}, fmt.Errorf("no type files given, use --type-file or the config")
	}
	return cfg, cfg.Validate()
}

// HandleLoggingParams builds a logger from the config. Console encoding is
// used when logging to a terminal and no encoding is configured.
func HandleLoggingParams(debug bool, cfg config.LoggerConfiguration) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("bad log level: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = cfg.Encoding
	if cc.Encoding == "" {
		cc.Encoding = "json"
		if cfg.LogPath == "" && term.IsTerminal(int(os.Stderr.Fd())) {
			cc.Encoding = "console"
		}
	}
	if cc.Encoding == "console" {
		cc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, err
		}
		cc.OutputPaths = []string{logPath}
	}

	return cc.Build()
}

// GetFactory returns a factory with the configured types loaded and the
// logger it writes to. The caller syncs the logger.
func GetFactory(ctx *cli.Context) (*factory.Factory, *zap.Logger, error) {
	cfg, err := GetConfigFromContext(ctx)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	log, err := HandleLoggingParams(ctx.Bool("debug"), cfg.Logger)
	if err != nil {
		return nil, nil, cli.NewExitError(err, 1)
	}
	f, err := factory.MakeFromConfig(cfg.Codec, factory.WithLogger(log))
	if err != nil {
		_ = log.Sync()
		return nil, nil, cli.NewExitError(err, 1)
	}
	return f, log, nil
}
