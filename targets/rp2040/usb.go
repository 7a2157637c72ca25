//go:build rp2040

package main

import (
	"machine"
)

// InitUSB configures machine.Serial, which is USB CDC-ACM on RP2040.
// The USB descriptors are set by TinyGo's runtime.
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// USBWriteBytes writes a report frame to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}

// USBDrain discards host input; the report link is one-way
func USBDrain() {
	for machine.Serial.Buffered() > 0 {
		if _, err := machine.Serial.ReadByte(); err != nil {
			return
		}
	}
}
