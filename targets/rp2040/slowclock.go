//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"slowclk/core"
)

// CLOCKS block: clk_rtc generator and frequency counter 0
const (
	clocksBase = 0x40008000

	clkRTCCtrl = clocksBase + 0x6c
	clkRTCDiv  = clocksBase + 0x70

	fc0RefKHz   = clocksBase + 0x80
	fc0MinKHz   = clocksBase + 0x84
	fc0MaxKHz   = clocksBase + 0x88
	fc0Delay    = clocksBase + 0x8c
	fc0Interval = clocksBase + 0x90
	fc0Src      = clocksBase + 0x94
	fc0Status   = clocksBase + 0x98
	fc0Result   = clocksBase + 0x9c
)

// CLK_RTC_CTRL fields
const (
	clkRTCEnable      = 1 << 11
	clkRTCAuxSrcShift = 5

	auxSrcROSCPh = 2
	auxSrcGPIN0  = 4
)

// FC0 fields
const (
	fc0SrcClkRTC    = 0x0d
	fc0StatusDone   = 1 << 4
	fc0StatusRun    = 1 << 8
	fc0ResultMask   = 0x3fffffff // KHZ in bits 29:5, fraction in 4:0
	fc0MaxKHzValue  = 0x1ffffff
	fc0IntervalBits = 10
)

const (
	roscStatus       = 0x40060000 + 0x18
	roscStatusStable = 1 << 31
)

// IO_BANK0 GPIO control: GPIO20 function 8 is clock input GPIN0
const (
	ioBank0Base  = 0x40014000
	gpin0Pin     = 20
	gpin0FuncSel = 8
	funcSelMask  = 0x1f
)

// Board oscillator figures
const (
	clkRefKHz    = 12000   // clk_ref runs from the 12 MHz XOSC
	roscNominal  = 6500000 // Ring oscillator, datasheet typical
	rcDivider    = roscNominal / core.NominalRCHz
	int8MDivider = 256
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

func gpioCtrl(pin uint32) *volatile.Register32 {
	return reg(uintptr(ioBank0Base + 8*pin + 4))
}

// RP2040SlowClock implements core.SlowClockDriver on clk_rtc.
// The 32k "crystal" is a 32.768 kHz clock on GPIN0; the external variant
// is a DS3231 driving the same pin.
type RP2040SlowClock struct {
	counter *EdgeCounter
	ext     externalSource
}

// externalSource is the board part that drives GPIN0 when enabled
type externalSource interface {
	Enable() error
}

// NewRP2040SlowClock creates the driver. ext may be nil on boards without
// an external oscillator; the external variant then behaves as a crystal
// that never starts.
func NewRP2040SlowClock(counter *EdgeCounter, ext externalSource) *RP2040SlowClock {
	return &RP2040SlowClock{
		counter: counter,
		ext:     ext,
	}
}

func (c *RP2040SlowClock) EnableOscillator(sel core.Selection) {
	if sel.Mux() != core.SlowClk32KXtal {
		return
	}
	gpioCtrl(gpin0Pin).ReplaceBits(gpin0FuncSel, funcSelMask, 0)
}

func (c *RP2040SlowClock) EnableExternalOscillator() {
	if c.ext != nil {
		if err := c.ext.Enable(); err != nil {
			core.DebugPrintln("[clk] external oscillator enable failed: " + err.Error())
		}
	}
	gpioCtrl(gpin0Pin).ReplaceBits(gpin0FuncSel, funcSelMask, 0)
}

// EnableInternal8M waits for the ring oscillator, which runs from reset.
// The /256 path is the clk_rtc divider, set by SetActiveMux.
func (c *RP2040SlowClock) EnableInternal8M(waitStable, enableDivided bool) {
	if waitStable {
		for !reg(roscStatus).HasBits(roscStatusStable) {
		}
	}
}

func (c *RP2040SlowClock) MeasureCrystal(cycles uint32) uint32 {
	return c.counter.Measure(cycles)
}

// MeasureActiveMux measures clk_rtc with frequency counter 0.
// The counter resolution is 1/32 kHz; cycles sets how long to wait
// for a result before reporting a timeout.
func (c *RP2040SlowClock) MeasureActiveMux(cycles uint32) uint32 {
	for reg(fc0Status).HasBits(fc0StatusRun) {
	}

	reg(fc0RefKHz).Set(clkRefKHz)
	reg(fc0MinKHz).Set(0)
	reg(fc0MaxKHz).Set(fc0MaxKHzValue)
	reg(fc0Delay).Set(3)
	reg(fc0Interval).Set(fc0IntervalBits)
	reg(fc0Src).Set(fc0SrcClkRTC)

	// Allow cycles of the slowest source plus the counter interval
	timeout := uint32(uint64(cycles)*1000000/core.NominalXtalHz) + 100000
	start := GetHardwareTime()
	for !reg(fc0Status).HasBits(fc0StatusDone) {
		if GetHardwareTime()-start > timeout {
			reg(fc0Src).Set(0)
			return 0
		}
	}

	raw := reg(fc0Result).Get() & fc0ResultMask
	reg(fc0Src).Set(0)
	if raw == 0 {
		return 0
	}
	// raw is kHz * 32; cal = 2^19 * 10^6 / (raw * 1000 / 32)
	return uint32((uint64(1) << core.CalFractBits) * 32000 / uint64(raw))
}

func (c *RP2040SlowClock) NominalFrequencyHz(sel core.Selection) uint32 {
	switch sel.Mux() {
	case core.SlowClkRC:
		return roscNominal / rcDivider
	case core.SlowClk32KXtal:
		return core.NominalXtalHz
	case core.SlowClk8MD256:
		return roscNominal / int8MDivider
	}
	return 0
}

// SetActiveMux switches the clk_rtc auxiliary source.
// The generator is stopped around the switch since the aux mux is not glitchless.
func (c *RP2040SlowClock) SetActiveMux(sel core.Selection) {
	var src, div uint32
	switch sel.Mux() {
	case core.SlowClk32KXtal:
		src, div = auxSrcGPIN0, 1
	case core.SlowClk8MD256:
		src, div = auxSrcROSCPh, int8MDivider
	default:
		src, div = auxSrcROSCPh, rcDivider
	}

	ctrl := reg(clkRTCCtrl)
	ctrl.ClearBits(clkRTCEnable)
	// Two cycles of the old clock; the slowest is 32 kHz
	busyWaitUS(100)

	ctrl.ReplaceBits(src, 0x7, clkRTCAuxSrcShift)
	reg(clkRTCDiv).Set(div << 8)
	ctrl.SetBits(clkRTCEnable)

	core.DebugPrintln("[clk] clk_rtc aux=" + itoa(int(src)) + " div=" + itoa(int(div)))
}
