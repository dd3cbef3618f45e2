package utils

import (
	"fmt"

	"github.com/pioneers/typpo/cli/flags"
	"github.com/pioneers/typpo/pkg/wideint"
	"github.com/urfave/cli"
)

// NewCommands returns 'utils' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "utils",
		Usage: "Convert data",
		Subcommands: []cli.Command{
			{
				Name:      "h2n",
				Usage:     "convert 64-bit hex quantity to decimal",
				Action:    hexToNumber,
				UsageText: "h2n <quantity>",
				ArgsUsage: "<quantity>",
			},
			{
				Name:      "n2h",
				Usage:     "convert 64-bit decimal quantity to hex",
				Action:    numberToHex,
				UsageText: "n2h <quantity>",
				ArgsUsage: "<quantity>",
			},
			{
				Name:      "reverse",
				Usage:     "reverse byte order of given hex bytes",
				Action:    reverseBytes,
				UsageText: "reverse <hexString>",
				ArgsUsage: "<hexString>",
			},
		},
	}}
}

func hexToNumber(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 1 {
		return cli.NewExitError("missing hex string to convert", 1)
	}
	num, err := wideint.ParseHex(args.First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Fprintln(ctx.App.Writer, num.Decimal())
	return nil
}

func numberToHex(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 1 {
		return cli.NewExitError("missing number to convert", 1)
	}
	num, err := wideint.Parse(args.First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	fmt.Fprintln(ctx.App.Writer, num.String())
	return nil
}

func reverseBytes(ctx *cli.Context) error {
	args := ctx.Args()
	if len(args) < 1 {
		return cli.NewExitError("missing hex string to convert", 1)
	}
	b, err := flags.ParseHexBytes(args.First())
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	fmt.Fprintln(ctx.App.Writer, flags.HexBytes{Value: b}.String())
	return nil
}
