package sim

import (
	"testing"

	"slowclk/core"
)

func TestBootSequenceGatesSlowCrystal(t *testing.T) {
	board := NewBoard()
	board.Xtal.Hz = 31775 // cal 16500015, 397 counts per window
	cfg := core.DefaultConfig()
	var retained core.RetainedState

	tests := []struct {
		selected   core.Selection
		committed  core.Selection
		counterCal uint64
		starts     uint32
	}{
		// Crystal runs but slow: counted at or below the gate
		{core.SlowClk32KXtal, core.SlowClk32KXtal, 397, 1},
		// Gated: RC, which clears the record
		{core.SlowClkRC, core.SlowClkRC, 0, 1},
		// Tried again
		{core.SlowClk32KXtal, core.SlowClk32KXtal, 397, 2},
	}

	for i, tt := range tests {
		res := board.Boot(cfg, &retained, core.SlowClk32KXtal)
		if res.Selected != tt.selected {
			t.Errorf("boot %d: selected %s, want %s", i, res.Selected, tt.selected)
		}
		if res.Stats.Committed != tt.committed {
			t.Errorf("boot %d: committed %s, want %s", i, res.Stats.Committed, tt.committed)
		}
		if retained.CounterCal != tt.counterCal {
			t.Errorf("boot %d: counter cal %d, want %d", i, retained.CounterCal, tt.counterCal)
		}
		if retained.ExtStartCount != tt.starts {
			t.Errorf("boot %d: start count %d, want %d", i, retained.ExtStartCount, tt.starts)
		}
	}
}

func TestBootNominalCrystalKeepsTrying(t *testing.T) {
	board := NewBoard()
	var retained core.RetainedState

	for i := 0; i < 3; i++ {
		res := board.Boot(core.DefaultConfig(), &retained, core.SlowClk32KXtal)
		if res.Stats.Committed != core.SlowClk32KXtal {
			t.Fatalf("boot %d: committed %s", i, res.Stats.Committed)
		}
		if !res.Keeper.Ready() {
			t.Fatalf("boot %d: keeper not calibrated", i)
		}
	}
	if retained.CounterCal != 409 {
		t.Errorf("Expected counter cal 409, got %d", retained.CounterCal)
	}
	if retained.ExtStartCount != 3 {
		t.Errorf("Expected 3 crystal starts, got %d", retained.ExtStartCount)
	}
	if retained.Magic != core.RetainedMagic {
		t.Errorf("Retained magic not set: %#x", retained.Magic)
	}
}

func TestPowerCycleResetsEnables(t *testing.T) {
	board := NewBoard()
	board.Xtal.StartAttempts = 2
	cfg := core.Config{CalCycles: 1024, XtalRetry: 1}
	var retained core.RetainedState

	// One attempt per boot never reaches the second enable
	for i := 0; i < 2; i++ {
		res := board.Boot(cfg, &retained, core.SlowClk32KXtal)
		if !res.Stats.FellBack {
			t.Errorf("boot %d: expected fallback", i)
		}
		if board.Calls.EnableOscillator != 1 {
			t.Errorf("boot %d: expected call counts reset, got %d enables", i, board.Calls.EnableOscillator)
		}
	}
}
