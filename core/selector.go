package core

// Config holds the slow clock calibration settings
type Config struct {
	// CalCycles is the number of slow clock cycles per measurement.
	// 0 disables live calibration; the nominal frequency is used instead.
	CalCycles uint32

	// XtalRetry is the number of crystal enable+measure attempts before
	// falling back to the internal RC oscillator. 0 is treated as 1.
	XtalRetry uint32
}

// DefaultConfig returns the configuration used when a board does not override it
func DefaultConfig() Config {
	return Config{
		CalCycles: DefaultCalCycles,
		XtalRetry: DefaultXtalRetry,
	}
}

// Normalize fills in values that must be positive
func (c *Config) Normalize() {
	if c.XtalRetry == 0 {
		c.XtalRetry = 1
	}
}

// SelectionStats describes the outcome of the last SelectAndCalibrate call
type SelectionStats struct {
	Requested     Selection
	Committed     Selection
	Calibration   uint32
	XtalAttempts  uint32 // Crystal enable+measure attempts made
	GlitchRetries uint32 // Zero results from the final measurement
	FellBack      bool   // Crystal not detected, internal RC used instead
	Estimated     bool   // Closed-form estimate used instead of a measurement
}

// Calibrator is the default Selector
type Calibrator struct {
	cfg    Config
	driver SlowClockDriver
	keeper *TimeKeeper
	stats  SelectionStats

	// OnGlitch, if set, is called each time the final measurement returns
	// zero. The retry itself is unbounded: the mux source is known present.
	OnGlitch func(retry uint32)
}

// NewCalibrator creates a calibrator that commits into keeper
func NewCalibrator(cfg Config, driver SlowClockDriver, keeper *TimeKeeper) *Calibrator {
	cfg.Normalize()
	return &Calibrator{
		cfg:    cfg,
		driver: driver,
		keeper: keeper,
	}
}

// Config returns the normalized configuration
func (c *Calibrator) Config() Config {
	return c.cfg
}

// Stats returns the outcome of the last SelectAndCalibrate call
func (c *Calibrator) Stats() SelectionStats {
	return c.stats
}

// SelectAndCalibrate switches the slow clock to requested, falling back to
// the internal RC oscillator when a 32k crystal does not start, and commits
// a nonzero calibration value into the TimeKeeper.
func (c *Calibrator) SelectAndCalibrate(requested Selection) {
	stats := SelectionStats{Requested: requested}
	mux := requested.Mux()

	if mux == SlowClk32KXtal {
		DebugPrintln("[clk] waiting for 32k oscillator to start up")
		if !c.startCrystal(requested, &stats) {
			DebugPrintln("[clk] 32k XTAL not found, switching to internal RC")
			RecordClockEvent(EvtFallback, requested, stats.XtalAttempts)
			mux = SlowClkRC
			stats.FellBack = true
		}
	} else if mux == SlowClk8MD256 {
		c.driver.EnableInternal8M(true, true)
	}

	var cal uint32
	for {
		c.driver.SetActiveMux(mux)
		RecordClockEvent(EvtMuxSet, mux, 0)

		if c.cfg.CalCycles > 0 {
			cal = c.driver.MeasureActiveMux(c.cfg.CalCycles)
			RecordClockEvent(EvtMuxMeasure, mux, cal)
		} else {
			cal = CalFromFrequency(c.driver.NominalFrequencyHz(mux))
			stats.Estimated = true
			RecordClockEvent(EvtEstimate, mux, cal)
		}
		if cal != 0 {
			break
		}

		stats.GlitchRetries++
		RecordClockEvent(EvtGlitch, mux, stats.GlitchRetries)
		if c.OnGlitch != nil {
			c.OnGlitch(stats.GlitchRetries)
		}
	}

	stats.Committed = mux
	stats.Calibration = cal
	c.keeper.CommitCalibration(mux, cal)
	RecordClockEvent(EvtCommit, mux, cal)
	c.stats = stats

	DebugPrintln("[clk] slow clock " + mux.String() + " cal=" + utoa(cal))
}

// startCrystal enables the 32k crystal (or its external oscillator variant)
// and checks it is running. Returns false once the retry budget is spent.
func (c *Calibrator) startCrystal(requested Selection, stats *SelectionStats) bool {
	for stats.XtalAttempts < c.cfg.XtalRetry {
		stats.XtalAttempts++
		if requested.IsExternal() {
			c.driver.EnableExternalOscillator()
		} else {
			c.driver.EnableOscillator(SlowClk32KXtal)
		}
		RecordClockEvent(EvtXtalEnable, requested, stats.XtalAttempts)

		// Without live calibration there is nothing to check against
		if c.cfg.CalCycles == 0 {
			return true
		}

		cal := c.driver.MeasureCrystal(c.cfg.CalCycles)
		RecordClockEvent(EvtXtalMeasure, requested, cal)
		if cal != 0 && cal >= MinXtalCal {
			return true
		}
	}
	return false
}
