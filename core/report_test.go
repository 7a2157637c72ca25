package core

import (
	"testing"

	"slowclk/protocol"

	"github.com/google/go-cmp/cmp"
)

func TestBuildReport(t *testing.T) {
	SetTime(5000)
	stats := SelectionStats{
		Requested:     SlowClk32KExtOsc,
		Committed:     SlowClkRC,
		Calibration:   3495253,
		XtalAttempts:  2,
		GlitchRetries: 1,
		FellBack:      true,
	}

	got := BuildReport("sim", stats, &RetainedState{Magic: RetainedMagic, ExtStartCount: 7})
	expected := &protocol.SlowClockReport{
		Requested:     9,
		Committed:     0,
		FellBack:      true,
		Calibration:   3495253,
		XtalAttempts:  2,
		GlitchRetries: 1,
		StartCount:    7,
		Uptime:        5000,
		Board:         "sim",
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}

	if BuildReport("sim", stats, nil).StartCount != 0 {
		t.Error("Expected zero start count without retained state")
	}
}

func TestReportTimerSendsFrames(t *testing.T) {
	resetScheduler()

	driver := newMockSlowClock()
	driver.muxResults = []uint32{3495000}
	c := NewCalibrator(DefaultConfig(), driver, NewTimeKeeper())
	c.SelectAndCalibrate(SlowClkRC)

	decoder := protocol.NewFrameDecoder()
	var frames []protocol.Frame
	sender := NewReportSender(func(b []byte) {
		frames = append(frames, decoder.Feed(b)...)
	})

	ScheduleTimer(ReportTimer("sim", sender, c, nil, 1000))
	for now := uint32(0); now <= 3000; now += 500 {
		SetTime(now)
		ProcessTimers()
	}

	if len(frames) != 3 {
		t.Fatalf("Expected 3 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if f.Sequence != uint8(i) {
			t.Errorf("Frame %d: expected sequence %d, got %d", i, i, f.Sequence)
		}
		r, err := protocol.DecodeReport(f.Payload)
		if err != nil {
			t.Fatalf("DecodeReport failed: %v", err)
		}
		if r.Calibration != 3495000 {
			t.Errorf("Expected calibration 3495000, got %d", r.Calibration)
		}
	}
}

func TestRecalibrationTimer(t *testing.T) {
	resetScheduler()

	if RecalibrationTimer(&recordingSelector{}, SlowClkRC, 0) != nil {
		t.Error("Expected nil timer for zero interval")
	}

	sel := &recordingSelector{}
	ScheduleTimer(RecalibrationTimer(sel, SlowClk32KXtal, 100))
	SetTime(250)
	ProcessTimers()

	// Dispatch runs the timer at 100 and 200 in one pass
	if len(sel.requested) != 2 {
		t.Errorf("Expected 2 recalibrations, got %d", len(sel.requested))
	}
}
