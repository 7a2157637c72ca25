//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"slowclk/core"
)

// Watchdog scratch registers survive a watchdog or soft reset.
// SCRATCH4-7 belong to the bootrom; 0-3 are free.
const (
	watchdogBase = 0x40058000
	scratch0     = watchdogBase + 0x0c
)

func scratch(n uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(scratch0) + 4*n))
}

// loadRetained reads the retained slow clock state from scratch registers
func loadRetained() core.RetainedState {
	return core.RetainedState{
		Magic:         scratch(0).Get(),
		ExtStartCount: scratch(1).Get(),
		CounterCal:    uint64(scratch(2).Get()) | uint64(scratch(3).Get())<<32,
	}
}

// storeRetained writes the state back for the next boot
func storeRetained(r *core.RetainedState) {
	scratch(0).Set(r.Magic)
	scratch(1).Set(r.ExtStartCount)
	scratch(2).Set(uint32(r.CounterCal))
	scratch(3).Set(uint32(r.CounterCal >> 32))
}
