package core

import "strings"

// Selection identifies a slow clock source.
// The low two bits are the hardware mux value; ExtOscFlag marks the
// externally driven variant of the 32k crystal path.
type Selection uint8

const (
	SlowClkRC        Selection = 0              // Internal ~150 kHz RC oscillator
	SlowClk32KXtal   Selection = 1              // External 32 kHz crystal
	SlowClk8MD256    Selection = 2              // Internal 8 MHz RC oscillator divided by 256
	SlowClk32KExtOsc Selection = 1 | ExtOscFlag // External 32 kHz oscillator on the crystal pin
)

// ExtOscFlag marks a 32k source that is driven by an external oscillator
// rather than a passive crystal.
const ExtOscFlag Selection = 1 << 3

const muxMask Selection = 0x3

// Calibration constants
const (
	// CalFractBits is the number of fractional bits in a calibration value
	CalFractBits = 19

	// MinXtalCal is the lowest plausible 32k crystal calibration.
	// An ideal 32768 Hz crystal gives 1000000/32768*(2^19) = 16*10^6.
	MinXtalCal uint32 = 15000000

	// DefaultCalCycles is the number of slow clock cycles measured per calibration
	DefaultCalCycles uint32 = 1024

	// DefaultXtalRetry is the number of crystal start attempts before falling back
	DefaultXtalRetry uint32 = 2
)

// Nominal slow clock frequencies, used when live calibration is disabled
const (
	NominalRCHz     uint32 = 150000
	NominalXtalHz   uint32 = 32768
	Nominal8MD256Hz uint32 = 8500000 / 256
)

// MinCalFrequencyHz is the lowest frequency whose calibration value fits in
// 32 bits. CalFromFrequency truncates below it.
const MinCalFrequencyHz uint32 = 123

// Mux returns the hardware mux value for the selection.
// Both crystal variants map to SlowClk32KXtal.
func (s Selection) Mux() Selection {
	return s & muxMask
}

// IsExternal reports whether the selection is the externally driven 32k variant
func (s Selection) IsExternal() bool {
	return s&ExtOscFlag != 0
}

func (s Selection) String() string {
	switch s {
	case SlowClkRC:
		return "RTC"
	case SlowClk32KXtal:
		return "32K_XTAL"
	case SlowClk8MD256:
		return "8M/256"
	case SlowClk32KExtOsc:
		return "32K_EXT_OSC"
	default:
		return "UNKNOWN(" + utoa(uint32(s)) + ")"
	}
}

// ParseSelection converts a configuration name into a Selection.
// Accepts the String() forms and a few short aliases, case-insensitively.
func ParseSelection(name string) (Selection, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rtc", "rc", "internal":
		return SlowClkRC, true
	case "32k_xtal", "xtal", "crystal":
		return SlowClk32KXtal, true
	case "8m/256", "8md256", "8m_d256":
		return SlowClk8MD256, true
	case "32k_ext_osc", "ext_osc", "external":
		return SlowClk32KExtOsc, true
	}
	return 0, false
}

// CalFromFrequency returns the closed-form calibration value for a source
// running at hz: (2^19 * 1_000_000) / hz. Returns 0 when hz is 0.
func CalFromFrequency(hz uint32) uint32 {
	if hz == 0 {
		return 0
	}
	const dividend = (uint64(1) << CalFractBits) * 1000000
	return uint32(dividend / uint64(hz))
}
