//go:build !tinygo

package core

// State stands in for the saved interrupt mask when running under regular Go
type State uintptr

// Host builds have no interrupts to mask; the scheduler tests run here
func disableInterrupts() State {
	return 0
}

func restoreInterrupts(State) {}
