// Package sim provides a simulated board for exercising slow clock selection
// without hardware. Every oscillator is a deterministic model and every
// capability call is counted.
package sim

import "slowclk/core"

// Oscillator models one slow clock source
type Oscillator struct {
	Hz      uint32 // Frequency once running
	Present bool   // False models an unpopulated or broken part

	// StartAttempts is the number of enables needed before the oscillator
	// runs. 0 and 1 both mean it starts on the first enable.
	StartAttempts uint32

	// EarlyCal is what a crystal measurement reads before the oscillator
	// is stable: 0 for a timeout, or a low value for a false start.
	EarlyCal uint32
}

// CallCounts records how often each capability was used
type CallCounts struct {
	EnableOscillator         uint32
	EnableExternalOscillator uint32
	EnableInternal8M         uint32
	MeasureCrystal           uint32
	MeasureActiveMux         uint32
	NominalFrequencyHz       uint32
	SetActiveMux             uint32
}

// Board implements core.SlowClockDriver
type Board struct {
	RC     Oscillator
	Xtal   Oscillator
	ExtOsc Oscillator
	Int8M  Oscillator

	// MuxGlitches is the number of active mux measurements that time out
	// before one succeeds
	MuxGlitches uint32

	Calls CallCounts

	mux         core.Selection
	xtalEnables uint32
	extEnables  uint32
	external    bool // Last crystal path enabled was the external oscillator
	int8MOn     bool
}

// NewBoard returns a board whose oscillators all run at their nominal
// frequencies and start on the first attempt
func NewBoard() *Board {
	return &Board{
		RC:     Oscillator{Hz: core.NominalRCHz, Present: true},
		Xtal:   Oscillator{Hz: core.NominalXtalHz, Present: true},
		ExtOsc: Oscillator{Hz: core.NominalXtalHz, Present: true},
		Int8M:  Oscillator{Hz: core.Nominal8MD256Hz, Present: true},
	}
}

func (o *Oscillator) running(enables uint32) bool {
	return o.Present && enables > 0 && enables >= o.StartAttempts
}

func (b *Board) crystal() (*Oscillator, uint32) {
	if b.external {
		return &b.ExtOsc, b.extEnables
	}
	return &b.Xtal, b.xtalEnables
}

func (b *Board) EnableOscillator(sel core.Selection) {
	b.Calls.EnableOscillator++
	if sel.Mux() == core.SlowClk32KXtal {
		b.xtalEnables++
		b.external = false
	}
}

func (b *Board) EnableExternalOscillator() {
	b.Calls.EnableExternalOscillator++
	b.extEnables++
	b.external = true
}

func (b *Board) EnableInternal8M(waitStable, enableDivided bool) {
	b.Calls.EnableInternal8M++
	b.int8MOn = enableDivided
}

func (b *Board) MeasureCrystal(cycles uint32) uint32 {
	b.Calls.MeasureCrystal++
	osc, enables := b.crystal()
	if !osc.running(enables) {
		return osc.EarlyCal
	}
	return core.CalFromFrequency(osc.Hz)
}

func (b *Board) MeasureActiveMux(cycles uint32) uint32 {
	b.Calls.MeasureActiveMux++
	if b.MuxGlitches > 0 {
		b.MuxGlitches--
		return 0
	}

	switch b.mux {
	case core.SlowClkRC:
		return core.CalFromFrequency(b.RC.Hz)
	case core.SlowClk32KXtal:
		osc, enables := b.crystal()
		if !osc.running(enables) {
			return 0
		}
		return core.CalFromFrequency(osc.Hz)
	case core.SlowClk8MD256:
		if !b.int8MOn {
			return 0
		}
		return core.CalFromFrequency(b.Int8M.Hz)
	}
	return 0
}

func (b *Board) NominalFrequencyHz(sel core.Selection) uint32 {
	b.Calls.NominalFrequencyHz++
	switch sel.Mux() {
	case core.SlowClkRC:
		return core.NominalRCHz
	case core.SlowClk32KXtal:
		return core.NominalXtalHz
	case core.SlowClk8MD256:
		return core.Nominal8MD256Hz
	}
	return 0
}

func (b *Board) SetActiveMux(sel core.Selection) {
	b.Calls.SetActiveMux++
	b.mux = sel.Mux()
}

// ActiveMux returns the current slow clock mux setting
func (b *Board) ActiveMux() core.Selection {
	return b.mux
}
