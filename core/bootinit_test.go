package core

import "testing"

// recordingSelector captures the selection BootInit asks for
type recordingSelector struct {
	requested []Selection
}

func (r *recordingSelector) SelectAndCalibrate(requested Selection) {
	r.requested = append(r.requested, requested)
}

func TestBootInit(t *testing.T) {
	testCases := []struct {
		name          string
		retained      RetainedState
		preferred     Selection
		expected      Selection
		expectedStart uint32
	}{
		{
			name:          "cold boot uses crystal",
			retained:      RetainedState{},
			preferred:     SlowClk32KXtal,
			expected:      SlowClk32KXtal,
			expectedStart: 1,
		},
		{
			name:          "slow counter skips crystal",
			retained:      RetainedState{Magic: RetainedMagic, ExtStartCount: 4, CounterCal: 400},
			preferred:     SlowClk32KExtOsc,
			expected:      SlowClkRC,
			expectedStart: 4,
		},
		{
			name:          "healthy counter keeps crystal",
			retained:      RetainedState{Magic: RetainedMagic, ExtStartCount: 4, CounterCal: 401},
			preferred:     SlowClk32KExtOsc,
			expected:      SlowClk32KExtOsc,
			expectedStart: 5,
		},
		{
			name:          "garbage retained state is reset",
			retained:      RetainedState{Magic: 0xDEADBEEF, ExtStartCount: 99, CounterCal: 1},
			preferred:     SlowClk32KXtal,
			expected:      SlowClk32KXtal,
			expectedStart: 1,
		},
		{
			name:          "internal source ignores gate",
			retained:      RetainedState{Magic: RetainedMagic, CounterCal: 1},
			preferred:     SlowClk8MD256,
			expected:      SlowClk8MD256,
			expectedStart: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sel := &recordingSelector{}
			retained := tc.retained

			got := BootInit(sel, &retained, tc.preferred, DefaultCrystalGate)

			if got != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, got)
			}
			if len(sel.requested) != 1 || sel.requested[0] != tc.expected {
				t.Errorf("Expected one request for %s, got %v", tc.expected, sel.requested)
			}
			if retained.ExtStartCount != tc.expectedStart {
				t.Errorf("Expected start count %d, got %d", tc.expectedStart, retained.ExtStartCount)
			}
			if retained.Magic != RetainedMagic {
				t.Errorf("Expected magic to be set, got %08x", retained.Magic)
			}
		})
	}
}

func TestBootInitCommitsThroughCalibrator(t *testing.T) {
	driver := newMockSlowClock()
	driver.crystalResults = []uint32{16000000}
	driver.muxResults = []uint32{16000500}
	keeper := NewTimeKeeper()
	retained := &RetainedState{}

	BootInit(NewCalibrator(DefaultConfig(), driver, keeper), retained, SlowClk32KXtal, DefaultCrystalGate)

	if keeper.Source() != SlowClk32KXtal || keeper.Calibration() != 16000500 {
		t.Errorf("Expected 32K_XTAL/16000500, got %s/%d", keeper.Source(), keeper.Calibration())
	}
}

func TestRecordCounterCal(t *testing.T) {
	testCases := []struct {
		name     string
		source   Selection
		cal      uint32
		expected uint64
		skips    bool
	}{
		{"nominal crystal", SlowClk32KXtal, 16000000, 409, false},
		{"slow crystal", SlowClk32KExtOsc, 16500000, 397, true},
		{"rc clears", SlowClkRC, 3495253, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			keeper := NewTimeKeeper()
			keeper.CommitCalibration(tc.source, tc.cal)
			retained := &RetainedState{Magic: RetainedMagic, CounterCal: 12345}

			RecordCounterCal(retained, keeper)
			if retained.CounterCal != tc.expected {
				t.Errorf("Expected counter cal %d, got %d", tc.expected, retained.CounterCal)
			}

			sel := &recordingSelector{}
			got := BootInit(sel, retained, SlowClk32KXtal, DefaultCrystalGate)
			if skipped := got == SlowClkRC; skipped != tc.skips {
				t.Errorf("Expected skip=%v, got selection %s", tc.skips, got)
			}
		})
	}
}
