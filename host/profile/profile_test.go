package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"slowclk/core"
	"slowclk/host/serial"
)

const ds3231Profile = `
board: rp2040-ds3231
expect:
  source: 32k_ext_osc
  allow_fallback: true
serial:
  device: /dev/ttyACM0
simulate:
  cal_cycles: 512
  xtal_retry: 3
  ext_osc:
    start_attempts: 2
    early_cal: 9000000
`

func TestParseAppliesDefaults(t *testing.T) {
	p, err := Parse([]byte(ds3231Profile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cycles := uint32(512)
	want := &Profile{
		Board: "rp2040-ds3231",
		Expect: ExpectConfig{
			Source:        "32k_ext_osc",
			MinCal:        15200000,
			MaxCal:        16800000,
			Tolerance:     DefaultTolerance,
			AllowFallback: true,
		},
		Serial: serial.Config{
			Device:      "/dev/ttyACM0",
			Baud:        115200,
			ReadTimeout: 100,
		},
		Simulate: SimulateConfig{
			Requested: "32k_ext_osc",
			CalCycles: &cycles,
			XtalRetry: 3,
			RC:        OscillatorConfig{Hz: core.NominalRCHz},
			Xtal:      OscillatorConfig{Hz: core.NominalXtalHz},
			ExtOsc:    OscillatorConfig{Hz: core.NominalXtalHz, StartAttempts: 2, EarlyCal: 9000000},
			Int8M:     OscillatorConfig{Hz: core.Nominal8MD256Hz},
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("Profile mismatch (-want +got):\n%s", diff)
	}

	if p.ExpectedSource() != core.SlowClk32KExtOsc {
		t.Errorf("ExpectedSource = %v", p.ExpectedSource())
	}
	if p.RequestedSource() != core.SlowClk32KExtOsc {
		t.Errorf("RequestedSource = %v", p.RequestedSource())
	}
}

func TestParseKeepsExplicitBounds(t *testing.T) {
	p, err := Parse([]byte(`
board: devkit
expect:
  source: rc
  min_cal: 3000000
  max_cal: 4000000
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.Expect.MinCal != 3000000 || p.Expect.MaxCal != 4000000 {
		t.Errorf("Bounds changed: %d..%d", p.Expect.MinCal, p.Expect.MaxCal)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"no board", "expect: {source: rc}", "board"},
		{"unknown source", "board: b\nexpect: {source: gps}", "expect.source"},
		{"inverted bounds", "board: b\nexpect: {source: rc, min_cal: 5, max_cal: 4}", "min_cal"},
		{"min bound alone", "board: b\nexpect: {source: 32k_xtal, min_cal: 15000000}", "set together"},
		{"max bound alone", "board: b\nexpect: {source: 32k_xtal, max_cal: 17000000}", "set together"},
		{"slow oscillator", "board: b\nexpect: {source: rc}\nsimulate: {xtal: {hz: 122}}", "simulate.xtal.hz"},
		{"tolerance", "board: b\nexpect: {source: rc, tolerance: 1.5}", "tolerance"},
		{"negative baud", "board: b\nexpect: {source: rc}\nserial: {baud: -1}", "serial.baud"},
		{"unknown requested", "board: b\nexpect: {source: rc}\nsimulate: {requested: pll}", "simulate.requested"},
		{"missing rc", "board: b\nexpect: {source: rc}\nsimulate: {rc: {missing: true}}", "simulate.rc"},
		{"rc start attempts", "board: b\nexpect: {source: rc}\nsimulate: {rc: {start_attempts: 3}}", "start_attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Error("Expected error for nil profile")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte(ds3231Profile), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Board != "rp2040-ds3231" {
		t.Errorf("Board = %q", p.Board)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSimulatedBoard(t *testing.T) {
	p, err := Parse([]byte(ds3231Profile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	cfg := p.Simulate.CoreConfig()
	if cfg.CalCycles != 512 || cfg.XtalRetry != 3 {
		t.Errorf("CoreConfig = %+v", cfg)
	}

	b := p.Simulate.Board()
	if !b.ExtOsc.Present || b.ExtOsc.StartAttempts != 2 {
		t.Errorf("ExtOsc = %+v", b.ExtOsc)
	}
	if b.RC.Hz != core.NominalRCHz {
		t.Errorf("RC.Hz = %d", b.RC.Hz)
	}
}

func TestCoreConfigDefaults(t *testing.T) {
	var s SimulateConfig
	if diff := cmp.Diff(core.DefaultConfig(), s.CoreConfig()); diff != "" {
		t.Errorf("CoreConfig mismatch (-want +got):\n%s", diff)
	}

	zero := uint32(0)
	s.CalCycles = &zero
	if s.CoreConfig().CalCycles != 0 {
		t.Error("Explicit cal_cycles 0 should disable live calibration")
	}
}
