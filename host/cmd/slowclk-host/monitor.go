package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/subcommands"

	"slowclk/host/mcu"
	"slowclk/host/monitor"
	"slowclk/host/profile"
)

// monitorCmd implements subcommands.Command for the "monitor" command.
type monitorCmd struct {
	profile string
	device  string
	wait    time.Duration
}

// Name implements subcommands.Command.
func (*monitorCmd) Name() string {
	return "monitor"
}

// Synopsis implements subcommands.Command.
func (*monitorCmd) Synopsis() string {
	return "check live slow clock reports against a board profile"
}

// Usage implements subcommands.Command.
func (*monitorCmd) Usage() string {
	return `monitor -profile <file> [-device <path>] - check reports from a board
`
}

// SetFlags implements subcommands.Command.
func (c *monitorCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.profile, "profile", "", "board profile (YAML)")
	f.StringVar(&c.device, "device", "", "serial device, overrides the profile")
	f.DurationVar(&c.wait, "wait", 30*time.Second, "how long to wait for the device to appear")
}

// Execute implements subcommands.Command.
func (c *monitorCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if c.profile == "" {
		fmt.Fprintf(os.Stderr, "-profile is required\n")
		return subcommands.ExitUsageError
	}
	p, err := profile.Load(c.profile)
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}
	if c.device != "" {
		p.Serial.Device = c.device
	}
	if p.Serial.Device == "" {
		fmt.Fprintf(os.Stderr, "no serial device in profile, use -device\n")
		return subcommands.ExitUsageError
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	conn, err := mcu.Connect(ctx, &p.Serial, c.wait, log)
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}
	defer conn.Close()

	m := monitor.New(p, log.WithField("board", p.Board))
	last := m.Run(ctx, conn.Reports())
	log.WithField("verdict", last.Status.String()).Infof(
		"reports: %d ok, %d degraded, %d failed",
		m.Counts[monitor.StatusOK],
		m.Counts[monitor.StatusDegraded],
		m.Counts[monitor.StatusFailed],
	)

	if last.Status == monitor.StatusFailed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
