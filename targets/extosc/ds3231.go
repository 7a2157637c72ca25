// Package extosc drives a DS3231 RTC as the external 32 kHz oscillator
// feeding the slow clock's crystal input.
package extosc

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// Source is a DS3231 whose 32kHz pin is wired to the slow clock input
type Source struct {
	bus    drivers.I2C
	device ds3231.Device
}

// New creates a Source on an already configured I2C bus
func New(bus drivers.I2C) *Source {
	return &Source{
		bus:    bus,
		device: ds3231.New(bus),
	}
}

// Enable starts the DS3231 oscillator and turns on its 32kHz output
func (s *Source) Enable() error {
	if err := s.device.SetRunning(true); err != nil {
		return err
	}
	return s.updateStatus(1<<ds3231.EN32KHZ, 0)
}

// Disable turns off the 32kHz output. The timekeeping oscillator keeps running.
func (s *Source) Disable() error {
	return s.updateStatus(0, 1<<ds3231.EN32KHZ)
}

// Enabled reports whether the oscillator runs and the 32kHz output is on
func (s *Source) Enabled() bool {
	if !s.device.IsRunning() {
		return false
	}
	status, err := s.readStatus()
	if err != nil {
		return false
	}
	return status&(1<<ds3231.EN32KHZ) != 0
}

// Stopped reports whether the oscillator stop flag is set, meaning the
// 32kHz output was interrupted since the flag was last cleared
func (s *Source) Stopped() bool {
	return !s.device.IsTimeValid()
}

// ClearStopped clears the oscillator stop flag
func (s *Source) ClearStopped() error {
	return s.updateStatus(0, 1<<ds3231.OSF)
}

func (s *Source) readStatus() (uint8, error) {
	data := []byte{0}
	if err := s.bus.Tx(uint16(s.device.Address), []byte{ds3231.REG_STATUS}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

func (s *Source) updateStatus(set, clear uint8) error {
	status, err := s.readStatus()
	if err != nil {
		return err
	}
	status = (status | set) &^ clear
	return s.bus.Tx(uint16(s.device.Address), []byte{ds3231.REG_STATUS, status}, nil)
}
