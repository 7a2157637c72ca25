package protocol

import (
	"errors"
	"io"
	"sync"
	"time"
)

// ReportReader parses slow clock reports from a serial stream on the host
type ReportReader struct {
	port    io.ReadCloser
	decoder *FrameDecoder

	reports chan *SlowClockReport

	mu           sync.Mutex
	decodeErrors int
	lastErr      error

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
}

// NewReportReader starts a background reader on port.
// Reports are delivered on Reports() until the stream ends or Close is called.
func NewReportReader(port io.ReadCloser) *ReportReader {
	r := &ReportReader{
		port:     port,
		decoder:  NewFrameDecoder(),
		reports:  make(chan *SlowClockReport, 16),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}

	go r.readLoop()

	return r
}

// Reports returns the channel of decoded reports. It is closed when the reader stops.
func (r *ReportReader) Reports() <-chan *SlowClockReport {
	return r.reports
}

// DecodeErrors returns the number of valid frames whose payload did not decode
// and the last such error
func (r *ReportReader) DecodeErrors() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decodeErrors, r.lastErr
}

func (r *ReportReader) readLoop() {
	defer close(r.doneChan)
	defer close(r.reports)

	buffer := make([]byte, 256)

	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		n, err := r.port.Read(buffer)
		if n > 0 {
			for _, frame := range r.decoder.Feed(buffer[:n]) {
				r.dispatch(frame)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			select {
			case <-r.stopChan:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

func (r *ReportReader) dispatch(frame Frame) {
	report, err := DecodeReport(frame.Payload)
	if err != nil {
		r.mu.Lock()
		r.decodeErrors++
		r.lastErr = err
		r.mu.Unlock()
		return
	}

	select {
	case r.reports <- report:
	case <-r.stopChan:
	}
}

// Close stops the read loop and closes the port
func (r *ReportReader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stopChan)
		// Closing the port unblocks a pending Read
		err = r.port.Close()
		<-r.doneChan
	})
	return err
}
