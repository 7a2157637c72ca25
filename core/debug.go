package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// ClockEvent captures one step of slow clock selection for post-mortem analysis
type ClockEvent struct {
	Kind   uint8     // Event kind code
	Source Selection // Source involved
	Clock  uint32    // System clock at event
	Value  uint32    // Calibration, attempt or retry count depending on Kind
}

// Event kind codes
const (
	EvtXtalEnable  = 1 // Crystal (or external oscillator) enabled, Value = attempt
	EvtXtalMeasure = 2 // Crystal measured, Value = calibration
	EvtFallback    = 3 // Crystal abandoned, Value = attempts made
	EvtMuxSet      = 4 // Slow clock mux switched
	EvtMuxMeasure  = 5 // Active mux measured, Value = calibration
	EvtEstimate    = 6 // Closed-form estimate, Value = calibration
	EvtGlitch      = 7 // Zero final measurement, Value = retry count
	EvtCommit      = 8 // Calibration committed, Value = calibration
)

const (
	ClockEventRingSize = 32 // Keep last 32 events
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether debug output is active
	debugEnabled bool

	clockRing     [ClockEventRingSize]ClockEvent
	clockRingHead uint8
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordClockEvent captures a selection event in the ring buffer
func RecordClockEvent(kind uint8, source Selection, value uint32) {
	idx := clockRingHead
	clockRing[idx] = ClockEvent{
		Kind:   kind,
		Source: source,
		Clock:  GetTime(),
		Value:  value,
	}
	clockRingHead = (idx + 1) % ClockEventRingSize
}

// ClockEvents returns the recorded events, oldest first
func ClockEvents() []ClockEvent {
	events := make([]ClockEvent, 0, ClockEventRingSize)
	start := clockRingHead
	for i := uint8(0); i < ClockEventRingSize; i++ {
		evt := clockRing[(start+i)%ClockEventRingSize]
		if evt.Kind == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// ClearClockEvents clears the event ring
func ClearClockEvents() {
	for i := range clockRing {
		clockRing[i] = ClockEvent{}
	}
	clockRingHead = 0
}

func clockEventName(kind uint8) string {
	switch kind {
	case EvtXtalEnable:
		return "XTAL_ENABLE"
	case EvtXtalMeasure:
		return "XTAL_MEASURE"
	case EvtFallback:
		return "FALLBACK!"
	case EvtMuxSet:
		return "MUX_SET"
	case EvtMuxMeasure:
		return "MUX_MEASURE"
	case EvtEstimate:
		return "ESTIMATE"
	case EvtGlitch:
		return "GLITCH!"
	case EvtCommit:
		return "COMMIT"
	default:
		return "UNKNOWN"
	}
}

// DumpClockEvents writes the event ring through the debug writer.
// Output is not gated by SetDebugEnabled.
func DumpClockEvents() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[clk] === Clock Event Dump ===")
	for _, evt := range ClockEvents() {
		debugPrintln("[clk] " + clockEventName(evt.Kind) +
			" src=" + evt.Source.String() +
			" clock=" + utoa(evt.Clock) +
			" v=" + utoa(evt.Value))
	}
	debugPrintln("[clk] === End Dump ===")
}
