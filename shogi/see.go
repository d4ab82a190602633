package shogi

// Static exchange evaluation: decide whether the capture sequence on
// a move's destination loses at most threshold material, following
// the least-valuable-attacker swap algorithm (based on the approach
// used by both CounterGo's pkg/engine/see.go and the Stoat reference
// this engine is modeled on).

var pieceValues = [PieceTypeCount]int{
	Pawn: 90, Lance: 315, Knight: 405, Silver: 495, Gold: 540,
	Bishop: 855, Rook: 990, King: 15000,
	ProPawn: 540, ProLance: 540, ProKnight: 540, ProSilver: 540,
	Horse: 1155, Dragon: 1320,
}

// orderedAttackerTypes lists every piece type a square can be attacked
// by, ascending by value, king last so it is only ever picked when no
// cheaper attacker remains.
var orderedAttackerTypes = []PieceType{
	Pawn, Lance, Knight, Silver, Gold,
	ProPawn, ProLance, ProKnight, ProSilver,
	Bishop, Rook, Horse, Dragon, King,
}

func materialOf(p *Position, c Color) int {
	total := 0
	for pt := Pawn; pt < PieceTypeCount; pt++ {
		total += pieceValues[pt] * p.pieceBb[pt][c].PopCount()
	}
	return total
}

// scaledPieceValue scales a piece's raw value by the defender's
// material, per spec §4.5: pieceValue * (opponentMaterial+128) / totalMaterial.
func scaledPieceValue(p *Position, piece Piece) int {
	total := materialOf(p, Black) + materialOf(p, White)
	if total == 0 {
		return pieceValues[piece.Type()]
	}
	opp := materialOf(p, piece.Color().Opponent())
	return pieceValues[piece.Type()] * (opp + 128) / total
}

func sameLine(a, b, c Square) bool {
	if a.Rank() == b.Rank() && b.Rank() == c.Rank() {
		return true
	}
	if a.File() == b.File() && b.File() == c.File() {
		return true
	}
	if a.File()-a.Rank() == b.File()-b.Rank() && b.File()-b.Rank() == c.File()-c.Rank() {
		return true
	}
	if a.File()+a.Rank() == b.File()+b.Rank() && b.File()+b.Rank() == c.File()+c.Rank() {
		return true
	}
	return false
}

// popLeastValuable finds the cheapest attacker of color c in occ that
// attacks sq (recomputed against occ, so sliders revealed by earlier
// removals are automatically picked up), excluding pieces pinned off
// the capture line. It returns the attacker's square, type and the
// occupancy with that attacker removed.
func popLeastValuable(p *Position, occ Bitboard, c Color, sq Square) (Square, PieceType, Bitboard, bool) {
	ksq := p.kingSquares[c]
	for _, pt := range orderedAttackerTypes {
		candidates := PieceAttacksReversed(p, pt, sq, c, occ).And(occ)
		rem := candidates
		for !rem.Empty() {
			var from Square
			from, rem = rem.PopLsb()
			if p.pinned[c].Test(from) && !sameLine(ksq, from, sq) {
				continue
			}
			return from, pt, occ.ClearBit(from), true
		}
	}
	return SquareNone, PieceTypeNone, occ, false
}

// PieceAttacksReversed returns the squares from which a piece of type
// pt and color c could attack sq (i.e. pt's attack set is symmetric
// under color for sliders/king but color-relative for pawn/knight/
// silver/gold, so this mirrors the color to look "backwards").
func PieceAttacksReversed(p *Position, pt PieceType, sq Square, c Color, occ Bitboard) Bitboard {
	all := p.pieceBb[pt][c]
	switch pt {
	case Pawn, Lance, Knight, Silver, Gold, ProPawn, ProLance, ProKnight, ProSilver:
		return PieceAttacks(pt, sq, c.Opponent(), occ).And(all)
	default:
		return PieceAttacks(pt, sq, c, occ).And(all)
	}
}

// SEE reports whether playing move in p loses at most threshold
// material over the ensuing capture sequence on its destination
// square.
func (p *Position) SEE(move Move, threshold int) bool {
	to := move.To()

	var gain int
	if captured := p.board[to]; !captured.IsNone() {
		gain = scaledPieceValue(p, captured)
	}
	gain -= threshold
	if gain < 0 {
		return false
	}
	if move.IsDrop() {
		return gain >= 0
	}

	from := move.From()
	moving := p.board[from]
	nextType := moving.Type()
	if move.IsPromotion() {
		nextType = Promoted(nextType)
	}
	gain -= scaledPieceValue(p, MakePiece(nextType, moving.Color()))
	if gain >= 0 {
		return true
	}

	occ := p.occ.ClearBit(from)
	side := moving.Color().Opponent() // side to move now recaptures
	balance := gain                   // negative; side just captured with nextType

	for {
		from2, pt2, newOcc, ok := popLeastValuable(p, occ, side, to)
		if !ok {
			break
		}
		occ = newOcc
		_ = from2
		mover := side
		side = side.Opponent()
		balance = -balance - 1 - scaledPieceValue(p, MakePiece(pt2, mover))
		if balance >= 0 {
			if pt2 == King && !p.AttackersTo(to, occ).And(occ).And(p.colorBb[side]).Empty() {
				// capturing with the king while the opponent still has
				// attackers is illegal; the side that would do so loses
				// the exchange instead.
				side = side.Opponent()
			}
			break
		}
	}

	return side != moving.Color()
}
