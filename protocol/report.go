package protocol

import "errors"

var ErrUnknownMessage = errors.New("unknown message id")

// Report flag bits
const (
	ReportFlagFellBack  = 1 << 0
	ReportFlagEstimated = 1 << 1
)

// SlowClockReport is the outcome of one slow clock selection as sent to the host.
// Sources are raw selection codes so this package does not depend on core.
type SlowClockReport struct {
	Requested     uint8
	Committed     uint8
	FellBack      bool
	Estimated     bool
	Calibration   uint32
	XtalAttempts  uint32
	GlitchRetries uint32
	StartCount    uint32
	Uptime        uint32
	Board         string
}

func (r *SlowClockReport) flags() uint32 {
	var f uint32
	if r.FellBack {
		f |= ReportFlagFellBack
	}
	if r.Estimated {
		f |= ReportFlagEstimated
	}
	return f
}

// EncodeReport writes the report payload (message id first)
func EncodeReport(output OutputBuffer, r *SlowClockReport) {
	EncodeVLQUint(output, MsgSlowClockReport)
	EncodeVLQUint(output, uint32(r.Requested))
	EncodeVLQUint(output, uint32(r.Committed))
	EncodeVLQUint(output, r.flags())
	EncodeVLQUint(output, r.Calibration)
	EncodeVLQUint(output, r.XtalAttempts)
	EncodeVLQUint(output, r.GlitchRetries)
	EncodeVLQUint(output, r.StartCount)
	EncodeVLQUint(output, r.Uptime)
	EncodeVLQString(output, r.Board)
}

// DecodeReport parses a payload produced by EncodeReport
func DecodeReport(payload []byte) (*SlowClockReport, error) {
	data := payload

	id, err := DecodeVLQUint(&data)
	if err != nil {
		return nil, err
	}
	if id != MsgSlowClockReport {
		return nil, ErrUnknownMessage
	}

	var fields [8]uint32
	for i := range fields {
		fields[i], err = DecodeVLQUint(&data)
		if err != nil {
			return nil, err
		}
	}

	board, err := DecodeVLQString(&data)
	if err != nil {
		return nil, err
	}

	return &SlowClockReport{
		Requested:     uint8(fields[0]),
		Committed:     uint8(fields[1]),
		FellBack:      fields[2]&ReportFlagFellBack != 0,
		Estimated:     fields[2]&ReportFlagEstimated != 0,
		Calibration:   fields[3],
		XtalAttempts:  fields[4],
		GlitchRetries: fields[5],
		StartCount:    fields[6],
		Uptime:        fields[7],
		Board:         board,
	}, nil
}

// EncodeReportFrame encodes r as a complete frame with sequence seq
func EncodeReportFrame(output OutputBuffer, seq uint8, r *SlowClockReport) error {
	payload := NewScratchOutput()
	EncodeReport(payload, r)
	return EncodeFrame(output, seq, payload.Result())
}
