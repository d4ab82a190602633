package shogi

import "testing"

// TestPerftStartPositionDepth1 covers testable property 5 / scenario
// E1: perft(1) from the standard start position is 30.
func TestPerftStartPositionDepth1(t *testing.T) {
	pos := NewStartPosition()
	if got := Perft(pos, 1); got != 30 {
		t.Fatalf("perft(1) = %d, want 30", got)
	}
}

// TestPerftStartPositionDepth2 cross-checks the depth-2 node count
// (900 is the well-known shogi perft(2) value from the standard
// start position).
func TestPerftStartPositionDepth2(t *testing.T) {
	pos := NewStartPosition()
	if got := Perft(pos, 2); got != 900 {
		t.Fatalf("perft(2) = %d, want 900", got)
	}
}

// TestNifuDropRejected covers scenario E2: dropping a pawn onto a
// file that already holds one of the dropping side's board pawns is
// illegal.
func TestNifuDropRejected(t *testing.T) {
	pos, err := ParseSFEN("lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b P 1")
	if err != nil {
		t.Fatal(err)
	}
	var list MoveList
	pos.GenerateAll(&list)
	for i := 0; i < list.Size; i++ {
		m := list.Moves[i]
		if m.IsDrop() && m.DropPiece() == Pawn && m.To().File() == MakeSquare(4, 0).File() {
			t.Fatalf("nifu drop %s should not be generated", m)
		}
	}
}

func TestMoveEncodingRoundTrip(t *testing.T) {
	from := MakeSquare(6, 6)
	to := MakeSquare(6, 5)
	m := NewMove(from, to, true)
	if m.From() != from || m.To() != to || !m.IsPromotion() || m.IsDrop() {
		t.Fatalf("move round trip failed: %+v", m)
	}
	d := NewDrop(Silver, to)
	if !d.IsDrop() || d.DropPiece() != Silver || d.To() != to {
		t.Fatalf("drop round trip failed: %+v", d)
	}
}

func TestApplyMoveKeyMatchesRecompute(t *testing.T) {
	pos := NewStartPosition()
	var list MoveList
	pos.GenerateAll(&list)
	for i := 0; i < list.Size; i++ {
		m := list.Moves[i]
		if !pos.IsLegal(m) {
			continue
		}
		np := pos.ApplyMove(m)
		want := np
		want.recomputeKeys()
		if np.key != want.key {
			t.Errorf("move %s: incremental key %x != recomputed %x", m, np.key, want.key)
		}
	}
}
