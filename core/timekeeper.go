package core

import "math/bits"

// TimeKeeper owns the slow clock calibration.
// It is written once per SelectAndCalibrate call during bring-up and read
// afterwards by time-keeping code; it takes no lock.
type TimeKeeper struct {
	cal    uint32
	source Selection
}

// NewTimeKeeper creates an empty, uncalibrated TimeKeeper
func NewTimeKeeper() *TimeKeeper {
	return &TimeKeeper{}
}

// CommitCalibration stores the calibration for the active slow clock source.
// A zero value means the calibration never completed and is rejected.
func (tk *TimeKeeper) CommitCalibration(source Selection, cal uint32) {
	if cal == 0 {
		panic("slow clock calibration must be nonzero")
	}
	tk.cal = cal
	tk.source = source
}

// Calibration returns the committed calibration value (0 before the first commit)
func (tk *TimeKeeper) Calibration() uint32 {
	return tk.cal
}

// Source returns the slow clock source the calibration belongs to
func (tk *TimeKeeper) Source() Selection {
	return tk.source
}

// Ready reports whether a calibration has been committed
func (tk *TimeKeeper) Ready() bool {
	return tk.cal != 0
}

// SlowClockHz returns the slow clock frequency implied by the calibration
func (tk *TimeKeeper) SlowClockHz() uint32 {
	// The closed-form formula is its own inverse
	return CalFromFrequency(tk.cal)
}

// SlowTicksToUS converts slow clock ticks to microseconds
func (tk *TimeKeeper) SlowTicksToUS(ticks uint64) uint64 {
	if tk.cal == 0 {
		return 0
	}
	hi, lo := bits.Mul64(ticks, uint64(tk.cal))
	return hi<<(64-CalFractBits) | lo>>CalFractBits
}

// USToSlowTicks converts microseconds to slow clock ticks
func (tk *TimeKeeper) USToSlowTicks(us uint64) uint64 {
	if tk.cal == 0 {
		return 0
	}
	hi := us >> (64 - CalFractBits)
	lo := us << CalFractBits
	if hi >= uint64(tk.cal) {
		// Quotient does not fit in 64 bits
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, uint64(tk.cal))
	return q
}
