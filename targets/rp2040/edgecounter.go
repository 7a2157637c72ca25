//go:build rp2040

package main

import (
	"machine"

	"slowclk/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program that marks the start and end of N rising edges on one pin.
//
// Command word: N-1 (edges to count after the first)
//
// Program flow:
//  1. Pull N-1 into X
//  2. Wait for a rising edge and push a start marker
//  3. Loop over N further rising edges
//  4. Push an end marker
//
// The CPU timestamps both markers with the 1MHz timer.
func buildEdgeCounterProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(), // 1: out x, 32
		asm.WaitPin(false, 0).Encode(),        // 2: wait 0 pin 0
		asm.WaitPin(true, 0).Encode(),         // 3: wait 1 pin 0
		asm.Push(false, false).Encode(),       // 4: push noblock (start)
		// edge_loop:
		asm.WaitPin(false, 0).Encode(),           // 5: wait 0 pin 0
		asm.WaitPin(true, 0).Encode(),            // 6: wait 1 pin 0
		asm.Jmp(5, rp2pio.JmpXNZeroDec).Encode(), // 7: jmp x--, edge_loop
		asm.Push(false, false).Encode(),          // 8: push noblock (end)
		// .wrap
	}
}

const edgeCounterOrigin = 0 // Load at offset 0 for correct jump addresses

// EdgeCounter times slow clock edges on a GPIO with a PIO state machine
type EdgeCounter struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	cfg    rp2pio.StateMachineConfig
	pin    machine.Pin
	offset uint8
}

// NewEdgeCounter creates an edge counter on PIO0 using state machine smNum
func NewEdgeCounter(smNum uint8) *EdgeCounter {
	return &EdgeCounter{
		pio: rp2pio.PIO0,
		sm:  rp2pio.PIO0.StateMachine(smNum),
	}
}

// Init loads the program and starts the state machine watching pin
func (e *EdgeCounter) Init(pin machine.Pin) error {
	e.pin = pin
	e.sm.TryClaim()

	program := buildEdgeCounterProgram()
	offset, err := e.pio.AddProgram(program, edgeCounterOrigin)
	if err != nil {
		return err
	}
	e.offset = offset

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetInPins(pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	// Full system clock; the program only waits on the pin
	cfg.SetClkDivIntFrac(1, 0)
	e.cfg = cfg

	e.sm.Init(offset, cfg)
	e.sm.SetPindirsConsecutive(pin, 1, false) // input
	e.sm.SetEnabled(true)
	return nil
}

// restart returns the state machine to the pull after a timeout
func (e *EdgeCounter) restart() {
	e.sm.SetEnabled(false)
	e.sm.ClearFIFOs()
	e.sm.Init(e.offset, e.cfg)
	e.sm.SetEnabled(true)
}

// waitMarker waits for the next marker from the state machine.
// Returns false if none arrives before deadline (microsecond timer).
func (e *EdgeCounter) waitMarker(start, timeout uint32) (uint32, bool) {
	for e.sm.IsRxFIFOEmpty() {
		if GetHardwareTime()-start > timeout {
			return 0, false
		}
	}
	e.sm.RxGet()
	return GetHardwareTime(), true
}

// Measure counts cycles rising edges and returns the calibration value
// (microseconds per cycle, Q13.19). Returns 0 when the pin is not toggling.
func (e *EdgeCounter) Measure(cycles uint32) uint32 {
	if cycles == 0 {
		return 0
	}

	// Expected duration at 32768 Hz, with 4x margin for a slow source
	timeout := uint32(uint64(cycles)*4*1000000/core.NominalXtalHz) + 1000

	e.sm.TxPut(cycles - 1)
	t0, ok := e.waitMarker(GetHardwareTime(), timeout)
	if !ok {
		e.restart()
		return 0
	}
	t1, ok := e.waitMarker(t0, timeout)
	if !ok {
		e.restart()
		return 0
	}

	elapsed := uint64(t1 - t0)
	return uint32((elapsed << core.CalFractBits) / uint64(cycles))
}
