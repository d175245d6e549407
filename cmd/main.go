package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradingcore/cmd/trader"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Tradingcore CMD"
	app.Usage = "The tradingcore command line interface"

	app.Commands = []cli.Command{
		traderCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var traderCMD = cli.Command{
	Name:        "trader",
	Usage:       "run the headless trading loops",
	Action:      traderAction,
	ArgsUsage:   "",
	Flags:       []cli.Flag{},
	Description: `Run the signal, probe and monitor loops without the API server`,
}

func traderAction(_ *cli.Context) error {
	logrus.Info("Starting trader CMD")

	t := &trader.Trader{}
	if err := t.Start(); err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
