package codec

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pioneers/typpo/cli/flags"
	"github.com/pioneers/typpo/cli/options"
	"github.com/pioneers/typpo/pkg/wideint"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"
)

// NewCommands returns 'encode' and 'decode' commands.
func NewCommands() []cli.Command {
	typeFlag := cli.StringFlag{
		Name:  "type, T",
		Usage: "name of the type to encode or decode",
	}
	encodeFlags := append([]cli.Flag{
		typeFlag,
		cli.StringFlag{
			Name:  "in, i",
			Usage: "YAML file with the field values",
		},
		cli.StringFlag{
			Name:  "value, v",
			Usage: `inline YAML field values, e.g. "{frameId: 1, data: '0x0102'}"`,
		},
	}, options.Config...)
	decodeFlags := append([]cli.Flag{
		typeFlag,
		flags.HexBytesFlag{
			Name:  "frame, r",
			Usage: "hex encoded frame",
		},
		cli.IntFlag{
			Name:  "offset",
			Usage: "offset of the instance within the frame",
		},
	}, options.Config...)
	return []cli.Command{
		{
			Name:      "encode",
			Usage:     "Encode field values into a hex frame",
			UsageText: "typpo encode --type name (--in file | --value yaml) [--target arch] --type-file path",
			Action:    encode,
			Flags:     encodeFlags,
		},
		{
			Name:      "decode",
			Usage:     "Decode a hex frame into JSON field values; byte fields and unsigned fields wider than 32 bits print as hex strings",
			UsageText: "typpo decode --type name --frame hex [--offset n] [--target arch] --type-file path",
			Action:    decode,
			Flags:     decodeFlags,
		},
	}
}

func encode(ctx *cli.Context) error {
	src, err := valueSource(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var fields map[string]interface{}
	if err := yaml.Unmarshal(src, &fields); err != nil {
		return cli.NewExitError(fmt.Errorf("bad field values: %w", err), 1)
	}

	f, log, err := options.GetFactory(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tr, err := f.Create(ctx.String("type"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if fields != nil {
		if err := tr.Set(fields); err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	buf := make([]byte, tr.Size())
	if err := tr.Write(buf); err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(buf))
	return nil
}

func valueSource(ctx *cli.Context) ([]byte, error) {
	in, inline := ctx.String("in"), ctx.String("value")
	switch {
	case in != "" && inline != "":
		return nil, fmt.Errorf("--in and --value are mutually exclusive")
	case in != "":
		return os.ReadFile(in)
	case inline != "":
		return []byte(inline), nil
	}
	return nil, fmt.Errorf("no field values given, use --in or --value")
}

func decode(ctx *cli.Context) error {
	frame, ok := ctx.Generic("frame").(*flags.HexBytes)
	if !ok || !frame.IsSet {
		return cli.NewExitError("no frame given, use --frame", 1)
	}

	f, log, err := options.GetFactory(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	tr, err := f.Create(ctx.String("type"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if err := tr.ReadAt(frame.Bytes(), ctx.Int("offset")); err != nil {
		return cli.NewExitError(err, 1)
	}
	out, err := json.MarshalIndent(plain(tr.Unwrap()), "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(out))
	return nil
}

// plain converts unwrapped values into JSON friendly ones: byte sequences
// and unsigned integers wider than 32 bits become hex strings.
func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		m := make(map[string]interface{}, len(x))
		for k, e := range x {
			m[k] = plain(e)
		}
		return m
	case []byte:
		return hexutil.Encode(x)
	case wideint.Uint64:
		return x.String()
	case *uint256.Int:
		return x.Hex()
	}
	return v
}
