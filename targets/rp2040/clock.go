//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"slowclk/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word (no latching)
)

var (
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// GetHardwareTime reads the low 32 bits of the 1MHz timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime updates the core timer with hardware time
// Called from the main loop
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}

// busyWaitUS spins on the hardware timer.
// Slow clock measurements block the main loop while they run.
func busyWaitUS(us uint32) {
	start := GetHardwareTime()
	for GetHardwareTime()-start < us {
	}
}
