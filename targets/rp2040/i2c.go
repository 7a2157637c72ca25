//go:build rp2040

package main

import (
	"errors"
	"machine"
	"sync"
)

// Default DS3231 wiring: I2C0 on SDA=GP4, SCL=GP5
const (
	rtcI2CFrequency = 400000
)

// RPI2CBus serialises access to one machine.I2C and implements drivers.I2C
type RPI2CBus struct {
	mu         sync.Mutex
	i2c        *machine.I2C
	configured bool
}

// NewRPI2CBus wraps a machine I2C peripheral
func NewRPI2CBus(i2c *machine.I2C) *RPI2CBus {
	return &RPI2CBus{i2c: i2c}
}

// Configure initializes the bus with TinyGo's default pins
func (b *RPI2CBus) Configure(frequencyHz uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.configured {
		return b.i2c.SetBaudRate(frequencyHz)
	}

	err := b.i2c.Configure(machine.I2CConfig{
		Frequency: frequencyHz,
	})
	if err != nil {
		return err
	}
	b.configured = true
	return nil
}

// Tx performs one transaction, register write then optional restart and read
func (b *RPI2CBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.configured {
		return errors.New("I2C bus not configured")
	}
	return b.i2c.Tx(addr, w, r)
}
