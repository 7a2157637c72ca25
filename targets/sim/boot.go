package sim

import "slowclk/core"

// BootResult is the outcome of one simulated boot
type BootResult struct {
	Selected core.Selection // Source passed to SelectAndCalibrate after the boot gate
	Stats    core.SelectionStats
	Keeper   *core.TimeKeeper
}

// PowerCycle returns every oscillator to its reset state.
// Oscillator models and retained memory are left alone.
func (b *Board) PowerCycle() {
	b.Calls = CallCounts{}
	b.mux = core.SlowClkRC
	b.xtalEnables = 0
	b.extEnables = 0
	b.external = false
	b.int8MOn = false
}

// Boot power cycles the board and runs the firmware boot path: the retained
// crystal gate, selection, and recording the counter calibration for the
// next boot.
func (b *Board) Boot(cfg core.Config, retained *core.RetainedState, preferred core.Selection) BootResult {
	b.PowerCycle()

	keeper := core.NewTimeKeeper()
	cal := core.NewCalibrator(cfg, b, keeper)
	selected := core.BootInit(cal, retained, preferred, core.DefaultCrystalGate)
	core.RecordCounterCal(retained, keeper)

	return BootResult{
		Selected: selected,
		Stats:    cal.Stats(),
		Keeper:   keeper,
	}
}
