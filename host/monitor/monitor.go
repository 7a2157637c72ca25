// Package monitor checks slow clock reports against a board profile.
package monitor

import (
	"context"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"slowclk/core"
	"slowclk/host/profile"
	"slowclk/protocol"
)

// Status grades a report
type Status int

const (
	StatusOK Status = iota
	StatusDegraded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Verdict is the outcome of checking one report
type Verdict struct {
	Status  Status
	Reasons []string
}

func (v *Verdict) add(s Status, reason string) {
	if s > v.Status {
		v.Status = s
	}
	v.Reasons = append(v.Reasons, reason)
}

func (v Verdict) String() string {
	if len(v.Reasons) == 0 {
		return v.Status.String()
	}
	return v.Status.String() + ": " + strings.Join(v.Reasons, "; ")
}

// Check grades report against the profile's expectations
func Check(p *profile.Profile, r *protocol.SlowClockReport) Verdict {
	var v Verdict
	if r == nil {
		v.add(StatusFailed, "no report")
		return v
	}

	if p.Board != "" && r.Board != p.Board {
		v.add(StatusFailed, "board "+strconv.Quote(r.Board)+" does not match profile "+strconv.Quote(p.Board))
	}
	if r.Calibration == 0 {
		v.add(StatusFailed, "calibration is zero")
		return v
	}

	expected := p.ExpectedSource()
	committed := core.Selection(r.Committed)

	switch {
	case committed == expected.Mux():
		if r.Calibration < p.Expect.MinCal || r.Calibration > p.Expect.MaxCal {
			v.add(StatusFailed, "calibration "+utoa(r.Calibration)+" outside "+
				utoa(p.Expect.MinCal)+".."+utoa(p.Expect.MaxCal))
		}
	case r.FellBack && committed == core.SlowClkRC:
		reason := "fell back to " + committed.String() + " after " + utoa(r.XtalAttempts) + " crystal attempts"
		if p.Expect.AllowFallback {
			v.add(StatusDegraded, reason)
		} else {
			v.add(StatusFailed, reason)
		}
	default:
		v.add(StatusFailed, "committed "+committed.String()+", expected "+expected.String())
	}

	if r.GlitchRetries > p.Expect.MaxGlitches {
		v.add(StatusDegraded, utoa(r.GlitchRetries)+" measurement glitches")
	}
	return v
}

func utoa(v uint32) string {
	return strconv.FormatUint(uint64(v), 10)
}

// Monitor logs a verdict for every report it receives
type Monitor struct {
	Profile *profile.Profile
	Log     logrus.FieldLogger

	// Counts by status
	Counts map[Status]int
}

// New creates a monitor logging through log
func New(p *profile.Profile, log logrus.FieldLogger) *Monitor {
	return &Monitor{
		Profile: p,
		Log:     log,
		Counts:  make(map[Status]int),
	}
}

// Run consumes reports until the channel closes or ctx is done.
// It returns the last verdict seen.
func (m *Monitor) Run(ctx context.Context, reports <-chan *protocol.SlowClockReport) Verdict {
	last := Verdict{Status: StatusFailed, Reasons: []string{"no report received"}}
	for {
		select {
		case <-ctx.Done():
			return last
		case r, ok := <-reports:
			if !ok {
				return last
			}
			last = m.Handle(r)
		}
	}
}

// Handle checks and logs one report
func (m *Monitor) Handle(r *protocol.SlowClockReport) Verdict {
	v := Check(m.Profile, r)
	m.Counts[v.Status]++

	if r == nil {
		m.Log.WithField("verdict", v.Status.String()).Error("no report")
		return v
	}

	entry := m.Log.WithFields(logrus.Fields{
		"source":      core.Selection(r.Committed).String(),
		"requested":   core.Selection(r.Requested).String(),
		"calibration": r.Calibration,
		"verdict":     v.Status.String(),
	})
	if r.FellBack {
		entry = entry.WithField("xtal_attempts", r.XtalAttempts)
	}
	if r.GlitchRetries > 0 {
		entry = entry.WithField("glitches", r.GlitchRetries)
	}

	switch v.Status {
	case StatusOK:
		entry.Debug("slow clock report")
	case StatusDegraded:
		entry.Warn(strings.Join(v.Reasons, "; "))
	default:
		entry.Error(strings.Join(v.Reasons, "; "))
	}
	return v
}
