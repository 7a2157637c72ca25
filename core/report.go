package core

import "slowclk/protocol"

// BuildReport assembles the host report for the last selection.
// retained may be nil on boards without retained memory.
func BuildReport(board string, stats SelectionStats, retained *RetainedState) *protocol.SlowClockReport {
	r := &protocol.SlowClockReport{
		Requested:     uint8(stats.Requested),
		Committed:     uint8(stats.Committed),
		FellBack:      stats.FellBack,
		Estimated:     stats.Estimated,
		Calibration:   stats.Calibration,
		XtalAttempts:  stats.XtalAttempts,
		GlitchRetries: stats.GlitchRetries,
		Uptime:        GetTime(),
		Board:         board,
	}
	if retained != nil {
		r.StartCount = retained.ExtStartCount
	}
	return r
}

// ReportSender frames reports into a reusable scratch buffer
type ReportSender struct {
	output *protocol.ScratchOutput
	seq    uint8
	write  func([]byte)
}

// NewReportSender creates a sender that hands each complete frame to write
func NewReportSender(write func([]byte)) *ReportSender {
	return &ReportSender{
		output: protocol.NewScratchOutput(),
		write:  write,
	}
}

// Send encodes and writes one report frame, advancing the sequence number
func (s *ReportSender) Send(r *protocol.SlowClockReport) {
	s.output.Reset()
	if err := protocol.EncodeReportFrame(s.output, s.seq, r); err != nil {
		DebugPrintln("[clk] report dropped: " + err.Error())
		return
	}
	s.seq = (s.seq + 1) & protocol.MessageSeqMask
	s.write(s.output.Result())
}

// ReportTimer returns a timer that sends a report for sel every interval ticks
func ReportTimer(board string, sender *ReportSender, sel *Calibrator, retained *RetainedState, interval uint32) *Timer {
	return &Timer{
		WakeTime: GetTime() + interval,
		Handler: func(t *Timer) uint8 {
			sender.Send(BuildReport(board, sel.Stats(), retained))
			t.WakeTime += interval
			return SF_RESCHEDULE
		},
	}
}

// RecalibrationTimer returns a timer that re-runs selection for requested
// every interval ticks. A zero interval disables it (nil timer).
func RecalibrationTimer(sel Selector, requested Selection, interval uint32) *Timer {
	if interval == 0 {
		return nil
	}
	return &Timer{
		WakeTime: GetTime() + interval,
		Handler: func(t *Timer) uint8 {
			sel.SelectAndCalibrate(requested)
			t.WakeTime += interval
			return SF_RESCHEDULE
		},
	}
}
