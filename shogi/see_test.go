package shogi

import "testing"

// TestSEERookForPawnKnightRecaptures covers scenario E5: Black's rook
// captures an undefended-looking pawn, but a White knight recaptures
// the rook. SEE must see through to the knight and judge the trade
// bad for Black at threshold 0, while a sufficiently lenient negative
// threshold (one the actual material loss can't exceed) still
// reports true.
func TestSEERookForPawnKnightRecaptures(t *testing.T) {
	pos, err := ParseSFEN("8k/9/5n3/9/4p4/9/4R4/9/K8 b - 1")
	if err != nil {
		t.Fatal(err)
	}

	from := MakeSquare(4, 6)
	to := MakeSquare(4, 4)
	if pos.PieceOn(from) != MakePiece(Rook, Black) {
		t.Fatalf("expected Black rook on %v, got %v", from, pos.PieceOn(from))
	}
	if pos.PieceOn(to) != MakePiece(Pawn, White) {
		t.Fatalf("expected White pawn on %v, got %v", to, pos.PieceOn(to))
	}

	move := NewMove(from, to, false)
	if !pos.IsLegal(move) {
		t.Fatal("RxP should be a legal move")
	}

	if pos.SEE(move, 0) {
		t.Fatal("SEE(0) should be false: the knight recapture loses a rook for a pawn")
	}
	if !pos.SEE(move, -2000) {
		t.Fatal("SEE(-2000) should be true: the loss cannot exceed so lenient a threshold")
	}
}
