package types

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/pioneers/typpo/cli/options"
	"github.com/urfave/cli"
)

// NewCommands returns 'types' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:      "types",
		Usage:     "List loaded types with their fixed sizes",
		UsageText: "typpo types [--config path] [--target arch] --type-file path [--type-file path ...]",
		Action:    listTypes,
		Flags:     options.Config,
	}}
}

func listTypes(ctx *cli.Context) error {
	f, log, err := options.GetFactory(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetBorder(false)
	table.SetHeader([]string{"Type", "Kind", "Size"})
	for _, name := range f.Types() {
		t, _ := f.Set().Type(name)
		size := fmt.Sprint(t.FixedSize())
		// Open types grow by their trailing bytes.
		if t.IsOpen() {
			size += "+"
		}
		table.Append([]string{name, t.Kind.String(), size})
	}
	table.Render()
	return nil
}
