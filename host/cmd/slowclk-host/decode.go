package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"slowclk/core"
	"slowclk/protocol"
)

// decodeCmd implements subcommands.Command for the "decode" command.
type decodeCmd struct{}

// Name implements subcommands.Command.
func (*decodeCmd) Name() string {
	return "decode"
}

// Synopsis implements subcommands.Command.
func (*decodeCmd) Synopsis() string {
	return "decode report frames from a hex dump"
}

// Usage implements subcommands.Command.
func (*decodeCmd) Usage() string {
	return `decode <hex>... - decode report frames, e.g. from a logic analyzer capture
`
}

// SetFlags implements subcommands.Command.
func (*decodeCmd) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.
func (*decodeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "expected a hex string\n")
		return subcommands.ExitUsageError
	}
	n, err := decodeHex(os.Stdout, strings.Join(f.Args(), ""))
	if err != nil {
		log.Error(err)
		return subcommands.ExitFailure
	}
	if n == 0 {
		log.Error("no valid frames found")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// decodeHex decodes every report frame in s and prints one line per report.
// Whitespace, colons and a 0x prefix are ignored.
func decodeHex(w io.Writer, s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.NewReplacer(" ", "", ":", "", "\n", "", "\t", "").Replace(s)
	data, err := hex.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid hex: %w", err)
	}

	decoder := protocol.NewFrameDecoder()
	count := 0
	for _, frame := range decoder.Feed(data) {
		r, err := protocol.DecodeReport(frame.Payload)
		if err != nil {
			fmt.Fprintf(w, "seq=%d: %v\n", frame.Sequence, err)
			continue
		}
		count++
		fmt.Fprintln(w, formatReport(frame.Sequence, r))
	}
	if decoder.Dropped > 0 {
		log.WithField("dropped", decoder.Dropped).Warn("discarded invalid bytes")
	}
	return count, nil
}

func formatReport(seq uint8, r *protocol.SlowClockReport) string {
	s := fmt.Sprintf("seq=%d board=%q requested=%s committed=%s cal=%d (%d Hz) attempts=%d glitches=%d starts=%d uptime=%d",
		seq, r.Board,
		core.Selection(r.Requested), core.Selection(r.Committed),
		r.Calibration, core.CalFromFrequency(r.Calibration),
		r.XtalAttempts, r.GlitchRetries, r.StartCount, r.Uptime)
	if r.FellBack {
		s += " fell-back"
	}
	if r.Estimated {
		s += " estimated"
	}
	return s
}
