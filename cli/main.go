package main

import (
	"os"

	"github.com/pioneers/typpo/cli/codec"
	"github.com/pioneers/typpo/cli/types"
	"github.com/pioneers/typpo/cli/utils"
	"github.com/pioneers/typpo/pkg/config"
	"github.com/urfave/cli"
)

func main() {
	ctl := newApp()

	if err := ctl.Run(os.Args); err != nil {
		panic(err)
	}
}

func newApp() *cli.App {
	ctl := cli.NewApp()
	ctl.Name = "typpo"
	ctl.Version = config.Version
	ctl.Usage = "Schema driven encoder and decoder for binary frames"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, types.NewCommands()...)
	ctl.Commands = append(ctl.Commands, codec.NewCommands()...)
	ctl.Commands = append(ctl.Commands, utils.NewCommands()...)
	return ctl
}
