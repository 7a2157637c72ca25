package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"slowclk/core"
	"slowclk/host/monitor"
	"slowclk/host/profile"
)

// simulateCmd implements subcommands.Command for the "simulate" command.
type simulateCmd struct {
	profile string
	boots   int
	events  bool
}

// Name implements subcommands.Command.
func (*simulateCmd) Name() string {
	return "simulate"
}

// Synopsis implements subcommands.Command.
func (*simulateCmd) Synopsis() string {
	return "run slow clock selection on a simulated board"
}

// Usage implements subcommands.Command.
func (*simulateCmd) Usage() string {
	return `simulate -profile <file> [-boots N] [-events] - boot a simulated board N times
`
}

// SetFlags implements subcommands.Command.
func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "profile", "", "board profile (YAML)")
	f.IntVar(&c.boots, "boots", 1, "number of boots; retained state carries across them")
	f.BoolVar(&c.events, "events", false, "dump the clock event ring after each boot")
}

// Execute implements subcommands.Command.
func (c *simulateCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.profile == "" {
		fmt.Fprintf(os.Stderr, "-profile is required\n")
		return subcommands.ExitUsageError
	}
	if c.boots < 1 {
		fmt.Fprintf(os.Stderr, "-boots must be at least 1\n")
		return subcommands.ExitUsageError
	}
	p, err := profile.Load(c.profile)
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}

	if last := simulate(p, c.boots, c.events); last.Status == monitor.StatusFailed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// simulate boots the profile's board and checks each boot's report.
// It returns the verdict for the last boot.
func simulate(p *profile.Profile, boots int, events bool) monitor.Verdict {
	// Event dumps bypass the debug gate, so route them at info level
	if events {
		core.SetDebugWriter(func(s string) { log.Info(s) })
	} else {
		core.SetDebugWriter(func(s string) { log.Debug(s) })
	}
	core.SetDebugEnabled(log.IsLevelEnabled(logrus.DebugLevel))

	board := p.Simulate.Board()
	cfg := p.Simulate.CoreConfig()
	m := monitor.New(p, log.WithField("board", p.Board))

	var retained core.RetainedState
	var v monitor.Verdict
	for i := 0; i < boots; i++ {
		core.ClearClockEvents()
		res := board.Boot(cfg, &retained, p.RequestedSource())

		log.WithFields(logrus.Fields{
			"boot":        i + 1,
			"selected":    res.Selected.String(),
			"counter_cal": retained.CounterCal,
		}).Info("boot")

		v = m.Handle(core.BuildReport(p.Board, res.Stats, &retained))
		if events {
			core.DumpClockEvents()
		}
	}
	return v
}
