package core

import "sync/atomic"

// TimerFreq is the system timer frequency (1 MHz microsecond timer on RP2040/RP2350)
const TimerFreq = 1000000

// systemTicks mirrors the hardware timer; updated from the main loop
var systemTicks uint32

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return atomic.LoadUint32(&systemTicks)
}

// SetTime sets the current system time (hardware integration and tests)
func SetTime(ticks uint32) {
	atomic.StoreUint32(&systemTicks, ticks)
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// ProcessTimers runs every timer that is due at the current system time
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
