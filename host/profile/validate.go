package profile

import (
	"fmt"

	"slowclk/core"
)

// Validate checks profile correctness.
// It performs declarative validation only and does not mutate the profile.
func Validate(p *Profile) error {
	if p == nil {
		return fmt.Errorf("profile cannot be nil")
	}

	if p.Board == "" {
		return fmt.Errorf("board: name is required")
	}

	// ------------------------------------------------------------
	// EXPECT
	// ------------------------------------------------------------

	if _, ok := core.ParseSelection(p.Expect.Source); !ok {
		return fmt.Errorf("expect.source: unknown slow clock source %q", p.Expect.Source)
	}
	if (p.Expect.MinCal == 0) != (p.Expect.MaxCal == 0) {
		return fmt.Errorf("expect: min_cal and max_cal must be set together")
	}
	if p.Expect.MinCal > p.Expect.MaxCal {
		return fmt.Errorf(
			"expect: min_cal %d is above max_cal %d",
			p.Expect.MinCal,
			p.Expect.MaxCal,
		)
	}
	if p.Expect.Tolerance < 0 || p.Expect.Tolerance >= 1 {
		return fmt.Errorf("expect.tolerance: %v out of range [0, 1)", p.Expect.Tolerance)
	}

	// ------------------------------------------------------------
	// SERIAL
	// ------------------------------------------------------------

	if p.Serial.Baud < 0 {
		return fmt.Errorf("serial.baud: %d is negative", p.Serial.Baud)
	}
	if p.Serial.ReadTimeout < 0 {
		return fmt.Errorf("serial.read_timeout_ms: %d is negative", p.Serial.ReadTimeout)
	}

	// ------------------------------------------------------------
	// SIMULATE
	// ------------------------------------------------------------

	s := &p.Simulate
	if s.Requested != "" {
		if _, ok := core.ParseSelection(s.Requested); !ok {
			return fmt.Errorf("simulate.requested: unknown slow clock source %q", s.Requested)
		}
	}

	// The internal sources back every fallback and never fail to start
	if s.RC.Missing {
		return fmt.Errorf("simulate.rc: the internal RC oscillator cannot be missing")
	}
	if s.Int8M.Missing {
		return fmt.Errorf("simulate.int_8m: the internal 8MHz oscillator cannot be missing")
	}
	oscillators := []struct {
		name string
		osc  OscillatorConfig
	}{
		{"rc", s.RC},
		{"xtal", s.Xtal},
		{"ext_osc", s.ExtOsc},
		{"int_8m", s.Int8M},
	}
	for _, o := range oscillators {
		// 0 selects the nominal frequency
		if o.osc.Hz != 0 && o.osc.Hz < core.MinCalFrequencyHz {
			return fmt.Errorf(
				"simulate.%s.hz: %d is below %d Hz, the calibration would overflow",
				o.name,
				o.osc.Hz,
				core.MinCalFrequencyHz,
			)
		}
	}
	if s.RC.StartAttempts > 1 || s.Int8M.StartAttempts > 1 {
		return fmt.Errorf("simulate: start_attempts only applies to the 32k sources")
	}

	return nil
}
