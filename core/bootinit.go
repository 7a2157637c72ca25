package core

// RetainedMagic marks a RetainedState written by this firmware.
// Anything else in retained memory (power-on garbage) is discarded.
const RetainedMagic uint32 = 0x534c4b31 // "SLK1"

// DefaultCrystalGate is the counter calibration at or below which the
// 32k crystal is not attempted on the next boot
const DefaultCrystalGate uint64 = 400

// RetainedState lives in memory that survives deep sleep and soft reset
type RetainedState struct {
	Magic uint32

	// ExtStartCount counts how many boots attempted the 32k crystal path
	ExtStartCount uint32

	// CounterCal is the counter calibration measured before the last sleep.
	// 0 means none was recorded.
	CounterCal uint64
}

// Validate resets the state if it was not written by this firmware
func (r *RetainedState) Validate() {
	if r.Magic == RetainedMagic {
		return
	}
	DebugPrintln("[clk] retained state invalid, magic=" + hex32(r.Magic))
	*r = RetainedState{Magic: RetainedMagic}
}

// BootInit selects the slow clock at boot.
// A crystal request is skipped in favour of the internal RC oscillator when
// the retained counter calibration is nonzero and at or below gate.
// A selection is always made so the TimeKeeper ends up calibrated.
func BootInit(sel Selector, retained *RetainedState, preferred Selection, gate uint64) Selection {
	retained.Validate()

	if preferred.Mux() == SlowClk32KXtal {
		if retained.CounterCal != 0 && retained.CounterCal <= gate {
			DebugPrintln("[clk] skipping 32k crystal, counter cal=" + utoa64(retained.CounterCal))
			preferred = SlowClkRC
		} else {
			retained.ExtStartCount++
			DebugPrintln("[clk] select external 32K, start=" + utoa(retained.ExtStartCount))
		}
	}

	sel.SelectAndCalibrate(preferred)
	return preferred
}

// CounterWindowUS is the window over which CounterCal counts slow clock
// cycles. A healthy 32768 Hz crystal gives 409 counts.
const CounterWindowUS = 12500

// RecordCounterCal stores the slow clock count over CounterWindowUS for the
// next boot. Only crystal calibrations are recorded; any other source
// clears the value so the crystal is tried again.
func RecordCounterCal(retained *RetainedState, keeper *TimeKeeper) {
	if !keeper.Ready() || keeper.Source().Mux() != SlowClk32KXtal {
		retained.CounterCal = 0
		return
	}
	retained.CounterCal = keeper.USToSlowTicks(CounterWindowUS)
}
