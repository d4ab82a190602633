package engine

import "testing"

func TestTableStoreProbeRoundTrip(t *testing.T) {
	var tt Table
	tt.Resize(1)

	const key = 0x1234567890abcdef
	tt.Store(key, 150, 120, 42, 6, 0, BoundExact, true)

	res := tt.Probe(key, 0)
	if !res.Hit {
		t.Fatal("expected probe hit")
	}
	if res.Score != 150 || res.StaticEval != 120 || res.Move != 42 || res.Depth != 6 || res.Flag != BoundExact || !res.PV {
		t.Fatalf("unexpected probe result: %+v", res)
	}
}

func TestTableProbeMissOnKeyMismatch(t *testing.T) {
	var tt Table
	tt.Resize(1)
	tt.Store(1, 10, 10, 0, 4, 0, BoundExact, false)

	res := tt.Probe(2, 0)
	if res.Hit {
		t.Fatalf("expected miss, got %+v", res)
	}
}

func TestScoreToFromTTMateAdjustment(t *testing.T) {
	const ply = 5
	stored := scoreToTT(scoreMate-2, ply)
	if got := scoreFromTT(stored, ply); got != scoreMate-2 {
		t.Fatalf("mate score round trip: got %d, want %d", got, scoreMate-2)
	}
}

func TestResizeRoundsDownToPowerOfTwo(t *testing.T) {
	var tt Table
	tt.Resize(1)
	n := len(tt.clusters)
	if n == 0 || n&(n-1) != 0 {
		t.Fatalf("cluster count %d is not a power of two", n)
	}
}
