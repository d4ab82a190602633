package datagen

import (
	"bytes"
	"testing"

	"golang.org/x/text/encoding/japanese"

	"github.com/toshirosawada/hayabusa/shogi"
)

func TestWriteKifuRoundTripsThroughShiftJIS(t *testing.T) {
	rec := Record{
		Type: RecordWin,
		ScoredMoves: []ScoredMove{
			{Move: shogi.NewMove(shogi.MakeSquare(6, 6), shogi.MakeSquare(6, 5), false), Eval: 12, Score: 20},
			{Move: shogi.NewDrop(shogi.Pawn, shogi.MakeSquare(4, 4)), Eval: 5, Score: 7},
		},
	}
	pieces := []shogi.PieceType{shogi.Pawn, shogi.Pawn}

	var buf bytes.Buffer
	if err := WriteKifu(&buf, rec, pieces); err != nil {
		t.Fatal(err)
	}

	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(buf.Bytes())
	if err != nil {
		t.Fatalf("decoding kifu output as Shift-JIS: %v", err)
	}
	text := string(decoded)

	if !bytes.Contains([]byte(text), []byte("歩")) {
		t.Errorf("expected pawn kanji in transcript, got %q", text)
	}
	if !bytes.Contains([]byte(text), []byte("打")) {
		t.Errorf("expected drop suffix in transcript, got %q", text)
	}
	if !bytes.Contains([]byte(text), []byte("先手勝ち")) {
		t.Errorf("expected black-win result line, got %q", text)
	}
}
