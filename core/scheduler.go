package core

// Timer represents a scheduled event.
// Handler returns SF_RESCHEDULE after moving WakeTime forward to run again.
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

var (
	timerList   *Timer
	currentTime uint32
)

// timerBefore compares wake times across 32-bit timer wraparound
func timerBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// ScheduleTimer adds a timer to the schedule
func ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	insertTimer(t)
}

// CancelTimer removes a timer from the schedule. Returns false if it was not scheduled.
func CancelTimer(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for p := &timerList; *p != nil; p = &(*p).Next {
		if *p == t {
			*p = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}

// insertTimer keeps timerList sorted by WakeTime; equal times run in insertion order
func insertTimer(t *Timer) {
	if timerList == nil || timerBefore(t.WakeTime, timerList.WakeTime) {
		t.Next = timerList
		timerList = t
		return
	}

	current := timerList
	for current.Next != nil && !timerBefore(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

// TimerDispatch runs all timers with WakeTime <= currentTime.
// Handlers run with interrupts enabled; a recalibration handler can busy-wait
// for tens of milliseconds.
func TimerDispatch() {
	for {
		timer := popDueTimer()
		if timer == nil {
			return
		}

		if timer.Handler(timer) == SF_RESCHEDULE {
			ScheduleTimer(timer)
		}
	}
}

func popDueTimer() *Timer {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if timerList == nil || timerBefore(currentTime, timerList.WakeTime) {
		return nil
	}
	timer := timerList
	timerList = timer.Next
	timer.Next = nil
	return timer
}
