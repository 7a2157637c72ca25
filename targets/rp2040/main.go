//go:build rp2040

package main

import (
	"machine"
	"time"

	"slowclk/core"
	"slowclk/targets/extosc"
)

const boardName = "rp2040-ds3231"

// Board configuration
var (
	preferredSource = core.SlowClk32KExtOsc
	reportInterval  = core.TimerFromUS(1000000)  // 1s
	recalInterval   = core.TimerFromUS(60000000) // 60s

	// Glitch retries before the event ring is dumped to the debug UART
	glitchDumpThreshold uint32 = 16
)

var (
	keeper   *core.TimeKeeper
	retained core.RetainedState
	rtc      *extosc.Source

	// USB write state
	msgerrors                uint32
	consecutiveWriteFailures uint32
)

// recalibrator re-runs selection and keeps the retained counter in step
type recalibrator struct {
	cal *core.Calibrator
}

func (r *recalibrator) SelectAndCalibrate(requested core.Selection) {
	r.cal.SelectAndCalibrate(requested)
	afterSelection(r.cal)
}

// afterSelection records the counter calibration for the next boot and
// turns the DS3231 output off when selection fell back from it
func afterSelection(cal *core.Calibrator) {
	core.RecordCounterCal(&retained, keeper)
	storeRetained(&retained)

	if rtc != nil && cal.Stats().FellBack && cal.Stats().Requested.IsExternal() {
		if err := rtc.Disable(); err != nil {
			core.DebugPrintln("[clk] DS3231 disable failed: " + err.Error())
		}
	}
}

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	UpdateSystemTime()

	// DS3231 32kHz output drives GPIN0 for the external variant
	bus := NewRPI2CBus(machine.I2C0)
	var ext externalSource
	if err := bus.Configure(rtcI2CFrequency); err != nil {
		core.DebugPrintln("[clk] I2C0 configure failed: " + err.Error())
	} else {
		rtc = extosc.New(bus)
		if rtc.Stopped() {
			// Lost power at some point; the 32k output restarts with the oscillator
			core.DebugPrintln("[clk] DS3231 oscillator had stopped")
			if err := rtc.ClearStopped(); err != nil {
				core.DebugPrintln("[clk] DS3231 clear OSF failed: " + err.Error())
			}
		}
		ext = rtc
	}

	counter := NewEdgeCounter(0)
	if err := counter.Init(machine.GPIO20); err != nil {
		core.DebugPrintln("[clk] PIO edge counter unavailable: " + err.Error())
	}

	driver := NewRP2040SlowClock(counter, ext)
	keeper = core.NewTimeKeeper()
	cal := core.NewCalibrator(core.DefaultConfig(), driver, keeper)
	cal.OnGlitch = func(retry uint32) {
		if retry == glitchDumpThreshold {
			core.DumpClockEvents()
		}
	}

	retained = loadRetained()
	core.BootInit(cal, &retained, preferredSource, core.DefaultCrystalGate)
	afterSelection(cal)

	sender := core.NewReportSender(writeUSB)
	sender.Send(core.BuildReport(boardName, cal.Stats(), &retained))

	core.ScheduleTimer(core.ReportTimer(boardName, sender, cal, &retained, reportInterval))
	if t := core.RecalibrationTimer(&recalibrator{cal: cal}, preferredSource, recalInterval); t != nil {
		core.ScheduleTimer(t)
	}

	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
				}
			}()

			UpdateSystemTime()
			USBDrain()
			core.ProcessTimers()
		}()

		time.Sleep(100 * time.Microsecond)
	}
}

// writeUSB writes one frame, dropping it after repeated failures
func writeUSB(frame []byte) {
	written := 0
	for written < len(frame) {
		n, err := USBWriteBytes(frame[written:])
		if err != nil || n == 0 {
			// Likely no host attached; reports are periodic so drop this one
			consecutiveWriteFailures++
			if consecutiveWriteFailures > 10 {
				consecutiveWriteFailures = 0
				msgerrors++
			}
			return
		}
		written += n
	}
	consecutiveWriteFailures = 0
}
