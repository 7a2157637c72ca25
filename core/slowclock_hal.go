package core

// SlowClockDriver is the abstract slow clock interface that core code uses.
// Platform-specific implementations handle the actual register writes.
// None of these calls report errors: an oscillator that fails to start is
// detected by the measurements returning zero or an implausibly low value.
type SlowClockDriver interface {
	// EnableOscillator starts the named oscillator. Idempotent.
	EnableOscillator(sel Selection)

	// EnableExternalOscillator starts the externally driven 32k crystal-pin variant
	EnableExternalOscillator()

	// EnableInternal8M starts the internal 8 MHz RC source feeding the /256 path
	EnableInternal8M(waitStable, enableDivided bool)

	// MeasureCrystal counts main oscillator cycles over the given number of
	// 32k crystal cycles. Returns a calibration value, 0 on timeout.
	MeasureCrystal(cycles uint32) uint32

	// MeasureActiveMux measures whatever source the slow clock mux currently
	// selects. Returns a calibration value, 0 on timeout.
	MeasureActiveMux(cycles uint32) uint32

	// NominalFrequencyHz returns the datasheet frequency of a source
	NominalFrequencyHz(sel Selection) uint32

	// SetActiveMux switches the slow clock mux
	SetActiveMux(sel Selection)
}

// Selector picks and calibrates the slow clock.
// Boards can supply their own implementation to replace the default
// Calibrator entirely.
type Selector interface {
	SelectAndCalibrate(requested Selection)
}
