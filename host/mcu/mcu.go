// Package mcu manages the connection to a board streaming slow clock reports.
package mcu

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"slowclk/host/serial"
	"slowclk/protocol"
)

// MCU represents a connection to a slow clock board
type MCU struct {
	// Serial port
	port serial.Port

	// Report decoder running on the port
	reader *protocol.ReportReader

	log logrus.FieldLogger
}

// NewMCU starts decoding reports from an already open port
func NewMCU(port serial.Port, log logrus.FieldLogger) *MCU {
	// Drop anything queued before we attached; the decoder resyncs anyway
	if err := port.Flush(); err != nil {
		log.WithError(err).Debug("flush failed")
	}
	return &MCU{
		port:   port,
		reader: protocol.NewReportReader(port),
		log:    log,
	}
}

// Connect opens the board's serial port, waiting up to maxWait for the
// device to appear
func Connect(ctx context.Context, cfg *serial.Config, maxWait time.Duration, log logrus.FieldLogger) (*MCU, error) {
	port, err := serial.OpenWithRetry(ctx, cfg, maxWait)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	log.WithField("device", cfg.Device).Info("connected")
	return NewMCU(port, log), nil
}

// Reports returns the decoded report stream.
// The channel closes when the port closes or fails.
func (m *MCU) Reports() <-chan *protocol.SlowClockReport {
	return m.reader.Reports()
}

// Close closes the connection to the MCU and logs decode statistics
func (m *MCU) Close() error {
	err := m.reader.Close()
	dropped, readErr := m.reader.DecodeErrors()
	entry := m.log.WithField("dropped", dropped)
	if readErr != nil {
		entry = entry.WithError(readErr)
	}
	entry.Debug("connection closed")
	return err
}
