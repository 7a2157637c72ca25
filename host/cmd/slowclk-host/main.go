// Binary slowclk-host monitors, decodes and simulates slow clock selection
// reports from a board.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

var (
	debug = flag.Bool("debug", false, "enable debug logging")

	log = logrus.New()
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(monitorCmd), "")
	subcommands.Register(new(simulateCmd), "")
	subcommands.Register(new(decodeCmd), "tools")
	subcommands.Register(new(convertCmd), "tools")

	flag.Parse()
	if *debug {
		log.SetLevel(logrus.DebugLevel)
	}

	os.Exit(int(subcommands.Execute(context.Background())))
}
