//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts while the timer list is modified
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
