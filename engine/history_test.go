package engine

import "testing"

func TestUpdateEntryGravityStaysBounded(t *testing.T) {
	var v HistoryScore
	for i := 0; i < 1000; i++ {
		updateEntry(&v, 2000)
	}
	if v > 32767 || v < -32768 {
		t.Fatalf("history cell escaped int16 range: %d", v)
	}
	// repeated positive bonus should converge, not diverge, under the
	// gravity rule.
	if v <= 0 {
		t.Fatalf("expected positive convergence, got %d", v)
	}
}

func TestHistoryBonusClampedToRange(t *testing.T) {
	if got := HistoryBonus(0); got != 0 {
		t.Fatalf("HistoryBonus(0) = %d, want 0", got)
	}
	if got := HistoryBonus(100); got != 2500 {
		t.Fatalf("HistoryBonus(100) = %d, want 2500 (clamped)", got)
	}
}

func TestKillerSlotsShiftOnInsert(t *testing.T) {
	var h History
	h.AddKiller(3, 10)
	h.AddKiller(3, 20)
	if h.Killer1(3) != 20 || h.Killer2(3) != 10 {
		t.Fatalf("killers = (%v, %v), want (20, 10)", h.Killer1(3), h.Killer2(3))
	}
	// re-adding the current killer1 must not duplicate it into slot 2.
	h.AddKiller(3, 20)
	if h.Killer1(3) != 20 || h.Killer2(3) != 10 {
		t.Fatalf("re-adding killer1 corrupted slots: (%v, %v)", h.Killer1(3), h.Killer2(3))
	}
}
