// Package profile loads board profiles: what a board is expected to report
// and how to simulate it.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"slowclk/core"
	"slowclk/host/serial"
	"slowclk/targets/sim"
)

type Profile struct {
	Board    string         `yaml:"board"`
	Expect   ExpectConfig   `yaml:"expect"`
	Serial   serial.Config  `yaml:"serial"`
	Simulate SimulateConfig `yaml:"simulate"`
}

// ---- EXPECT ----

type ExpectConfig struct {
	Source string `yaml:"source"`

	// Calibration bounds for the expected source. Both zero means derive
	// them from the nominal frequency and Tolerance.
	MinCal    uint32  `yaml:"min_cal"`
	MaxCal    uint32  `yaml:"max_cal"`
	Tolerance float64 `yaml:"tolerance"` // fraction, e.g. 0.05

	AllowFallback bool   `yaml:"allow_fallback"`
	MaxGlitches   uint32 `yaml:"max_glitches"`
}

// ---- SIMULATE ----

type OscillatorConfig struct {
	Hz            uint32 `yaml:"hz"`
	Missing       bool   `yaml:"missing"`
	StartAttempts uint32 `yaml:"start_attempts"`
	EarlyCal      uint32 `yaml:"early_cal"`
}

type SimulateConfig struct {
	Requested string `yaml:"requested"` // defaults to expect.source

	CalCycles *uint32 `yaml:"cal_cycles"` // 0 disables live calibration
	XtalRetry uint32  `yaml:"xtal_retry"`

	MuxGlitches uint32 `yaml:"mux_glitches"`

	RC     OscillatorConfig `yaml:"rc"`
	Xtal   OscillatorConfig `yaml:"xtal"`
	ExtOsc OscillatorConfig `yaml:"ext_osc"`
	Int8M  OscillatorConfig `yaml:"int_8m"`
}

// Load reads, validates and normalizes a profile file
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a YAML profile, then validates and normalizes it
func Parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	Normalize(&p)
	return &p, nil
}

// ExpectedSource returns the parsed expect.source
func (p *Profile) ExpectedSource() core.Selection {
	sel, _ := core.ParseSelection(p.Expect.Source)
	return sel
}

// RequestedSource returns the source the simulator requests at boot
func (p *Profile) RequestedSource() core.Selection {
	sel, _ := core.ParseSelection(p.Simulate.Requested)
	return sel
}

// CoreConfig returns the calibration settings for simulation
func (s *SimulateConfig) CoreConfig() core.Config {
	cfg := core.DefaultConfig()
	if s.CalCycles != nil {
		cfg.CalCycles = *s.CalCycles
	}
	if s.XtalRetry != 0 {
		cfg.XtalRetry = s.XtalRetry
	}
	return cfg
}

func (o OscillatorConfig) oscillator() sim.Oscillator {
	return sim.Oscillator{
		Hz:            o.Hz,
		Present:       !o.Missing,
		StartAttempts: o.StartAttempts,
		EarlyCal:      o.EarlyCal,
	}
}

// Board builds a simulated board from the oscillator models
func (s *SimulateConfig) Board() *sim.Board {
	b := sim.NewBoard()
	b.RC = s.RC.oscillator()
	b.Xtal = s.Xtal.oscillator()
	b.ExtOsc = s.ExtOsc.oscillator()
	b.Int8M = s.Int8M.oscillator()
	b.MuxGlitches = s.MuxGlitches
	return b
}
