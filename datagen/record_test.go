package datagen

import (
	"bytes"
	"io"
	"testing"

	"github.com/toshirosawada/hayabusa/shogi"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := Record{
		Type:          RecordWin,
		UnscoredMoves: []shogi.Move{shogi.NewMove(shogi.MakeSquare(6, 6), shogi.MakeSquare(6, 5), false)},
		ScoredMoves: []ScoredMove{
			{Move: shogi.NewDrop(shogi.Pawn, shogi.MakeSquare(4, 4)), Eval: 35, Score: 40},
			{Move: shogi.NewMove(shogi.MakeSquare(2, 2), shogi.MakeSquare(2, 1), true), Eval: -12, Score: -8},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, rec); err != nil {
		t.Fatal(err)
	}
	if err := WriteTerminator(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != rec.Type || len(got.UnscoredMoves) != len(rec.UnscoredMoves) || len(got.ScoredMoves) != len(rec.ScoredMoves) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, rec)
	}
	for i := range rec.ScoredMoves {
		if got.ScoredMoves[i] != rec.ScoredMoves[i] {
			t.Fatalf("scored move %d: got %+v, want %+v", i, got.ScoredMoves[i], rec.ScoredMoves[i])
		}
	}

	if _, err := Read(&buf); err != io.EOF {
		t.Fatalf("expected io.EOF at terminator, got %v", err)
	}
}
