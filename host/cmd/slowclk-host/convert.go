package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/google/subcommands"

	"slowclk/core"
)

// convertCmd implements subcommands.Command for the "convert" command.
type convertCmd struct {
	cal   uint
	hz    uint
	ticks uint64
	us    uint64
}

// Name implements subcommands.Command.
func (*convertCmd) Name() string {
	return "convert"
}

// Synopsis implements subcommands.Command.
func (*convertCmd) Synopsis() string {
	return "convert between slow clock ticks and microseconds"
}

// Usage implements subcommands.Command.
func (*convertCmd) Usage() string {
	return `convert {-cal N | -hz F} {-ticks T | -us U} - convert with a calibration value
`
}

// SetFlags implements subcommands.Command.
func (c *convertCmd) SetFlags(f *flag.FlagSet) {
	f.UintVar(&c.cal, "cal", 0, "calibration value (microseconds per tick, Q13.19)")
	f.UintVar(&c.hz, "hz", 0, "slow clock frequency, used instead of -cal")
	f.Uint64Var(&c.ticks, "ticks", 0, "slow clock ticks to convert to microseconds")
	f.Uint64Var(&c.us, "us", 0, "microseconds to convert to slow clock ticks")
}

// Execute implements subcommands.Command.
func (c *convertCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	out, err := c.convert()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitUsageError
	}
	fmt.Println(out)
	return subcommands.ExitSuccess
}

func (c *convertCmd) convert() (string, error) {
	var cal uint32
	switch {
	case c.cal != 0 && c.hz != 0:
		return "", fmt.Errorf("-cal and -hz are exclusive")
	case c.hz > math.MaxUint32:
		return "", fmt.Errorf("frequency %d out of range", c.hz)
	case c.cal > math.MaxUint32:
		return "", fmt.Errorf("calibration %d out of range", c.cal)
	case c.hz != 0 && c.hz < uint(core.MinCalFrequencyHz):
		return "", fmt.Errorf("frequency %d below %d Hz, calibration does not fit 32 bits", c.hz, core.MinCalFrequencyHz)
	case c.hz != 0:
		cal = core.CalFromFrequency(uint32(c.hz))
	case c.cal != 0:
		cal = uint32(c.cal)
	default:
		return "", fmt.Errorf("one of -cal or -hz is required")
	}

	keeper := core.NewTimeKeeper()
	keeper.CommitCalibration(core.SlowClkRC, cal)

	switch {
	case c.ticks != 0 && c.us != 0:
		return "", fmt.Errorf("-ticks and -us are exclusive")
	case c.ticks != 0:
		return fmt.Sprintf("%d ticks = %d us (cal=%d)", c.ticks, keeper.SlowTicksToUS(c.ticks), cal), nil
	case c.us != 0:
		return fmt.Sprintf("%d us = %d ticks (cal=%d)", c.us, keeper.USToSlowTicks(c.us), cal), nil
	}
	return fmt.Sprintf("cal=%d (%d Hz)", cal, keeper.SlowClockHz()), nil
}
