package core

import (
	"strings"
	"testing"
)

func TestDebugPrintlnGated(t *testing.T) {
	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})
	defer SetDebugEnabled(false)

	SetDebugEnabled(false)
	DebugPrintln("hidden")
	SetDebugEnabled(true)
	DebugPrintln("shown")

	if len(lines) != 1 || lines[0] != "shown" {
		t.Errorf("Expected only the enabled message, got %v", lines)
	}
}

func TestClockEventRingWraps(t *testing.T) {
	ClearClockEvents()
	for i := uint32(0); i < ClockEventRingSize+5; i++ {
		RecordClockEvent(EvtMuxMeasure, SlowClkRC, i)
	}

	events := ClockEvents()
	if len(events) != ClockEventRingSize {
		t.Fatalf("Expected %d events, got %d", ClockEventRingSize, len(events))
	}
	if events[0].Value != 5 {
		t.Errorf("Expected oldest value 5, got %d", events[0].Value)
	}
	if events[len(events)-1].Value != ClockEventRingSize+4 {
		t.Errorf("Expected newest value %d, got %d", ClockEventRingSize+4, events[len(events)-1].Value)
	}
}

func TestDumpClockEvents(t *testing.T) {
	ClearClockEvents()
	SetTime(42)
	RecordClockEvent(EvtFallback, SlowClk32KExtOsc, 2)

	var lines []string
	SetDebugWriter(func(s string) { lines = append(lines, s) })
	defer SetDebugWriter(func(string) {})

	// Dump is not gated by the enabled flag
	SetDebugEnabled(false)
	DumpClockEvents()

	if len(lines) != 3 {
		t.Fatalf("Expected header, one event and footer, got %v", lines)
	}
	expected := "[clk] FALLBACK! src=32K_EXT_OSC clock=42 v=2"
	if lines[1] != expected {
		t.Errorf("Expected %q, got %q", expected, lines[1])
	}
	if !strings.HasPrefix(lines[0], "[clk] ===") {
		t.Errorf("Unexpected header %q", lines[0])
	}
}

func TestStrutil(t *testing.T) {
	if utoa(0) != "0" || utoa(4294967295) != "4294967295" {
		t.Error("utoa mismatch")
	}
	if utoa64(18446744073709551615) != "18446744073709551615" {
		t.Error("utoa64 mismatch")
	}
	if hex32(0x534c4b31) != "0x534c4b31" {
		t.Errorf("hex32 mismatch: %s", hex32(0x534c4b31))
	}
}
