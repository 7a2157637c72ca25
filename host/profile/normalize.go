package profile

import (
	"slowclk/core"
	"slowclk/host/serial"
)

// DefaultTolerance is the calibration window used when expect gives no bounds
const DefaultTolerance = 0.05

// Normalize fills in defaults.
// It MUST be called only after Validate().
func Normalize(p *Profile) {
	if p == nil {
		return
	}

	d := serial.DefaultConfig(p.Serial.Device)
	if p.Serial.Baud == 0 {
		p.Serial.Baud = d.Baud
	}
	if p.Serial.ReadTimeout == 0 {
		p.Serial.ReadTimeout = d.ReadTimeout
	}

	if p.Expect.Tolerance == 0 {
		p.Expect.Tolerance = DefaultTolerance
	}
	if p.Expect.MinCal == 0 && p.Expect.MaxCal == 0 {
		nominal := core.CalFromFrequency(nominalHz(p.ExpectedSource()))
		margin := uint32(float64(nominal) * p.Expect.Tolerance)
		p.Expect.MinCal = nominal - margin
		p.Expect.MaxCal = nominal + margin
	}

	s := &p.Simulate
	if s.Requested == "" {
		s.Requested = p.Expect.Source
	}
	normalizeOscillator(&s.RC, core.NominalRCHz)
	normalizeOscillator(&s.Xtal, core.NominalXtalHz)
	normalizeOscillator(&s.ExtOsc, core.NominalXtalHz)
	normalizeOscillator(&s.Int8M, core.Nominal8MD256Hz)
}

func normalizeOscillator(o *OscillatorConfig, nominal uint32) {
	if o.Hz == 0 {
		o.Hz = nominal
	}
}

func nominalHz(sel core.Selection) uint32 {
	switch sel.Mux() {
	case core.SlowClk32KXtal:
		return core.NominalXtalHz
	case core.SlowClk8MD256:
		return core.Nominal8MD256Hz
	}
	return core.NominalRCHz
}
