package shogi

// Constant, compile-time attack tables and the branchless sliding
// attack generator. Leaper tables are built once in init(); sliding
// attacks are derived at runtime from empty-board ray masks split
// into the "forward" (towards square 80) and "backward" (towards
// square 0) halves of each line, following the trailing/leading-zero
// sentinel technique: a sentinel bit at the relevant board edge
// guarantees the zero-count is always well defined, so the ray is
// truncated at the first blocker (inclusive) with no branch.

var (
	pawnAttacks   [ColorCount][SquareCount]Bitboard
	knightAttacks [ColorCount][SquareCount]Bitboard
	silverAttacks [ColorCount][SquareCount]Bitboard
	goldAttacks   [ColorCount][SquareCount]Bitboard
	kingAttacks   [SquareCount]Bitboard

	// per-square, per-direction empty-board rays, split by whether the
	// direction increases (forward) or decreases (backward) the square
	// index.
	rayN, rayS, rayE, rayW                 [SquareCount]Bitboard
	rayNE, rayNW, raySE, raySW             [SquareCount]Bitboard
	lanceRayBlack, lanceRayWhite            [SquareCount]Bitboard

	prefixMask [SquareCount + 1]Bitboard // squares with index <= t
	suffixMask [SquareCount + 1]Bitboard // squares with index >= t
)

func forwardDelta(c Color) int {
	if c == Black {
		return -1
	}
	return 1
}

func buildLeaper(table *[ColorCount][SquareCount]Bitboard, offsets func(c Color) [][2]int) {
	for c := Color(0); c < ColorCount; c++ {
		for sq := Square(0); sq < SquareCount; sq++ {
			var bb Bitboard
			for _, d := range offsets(c) {
				if t := sq.Offset(d[0], d[1]); t != SquareNone {
					bb = bb.WithBit(t)
				}
			}
			table[c][sq] = bb
		}
	}
}

func rayMask(sq Square, df, dr int) Bitboard {
	var bb Bitboard
	cur := sq
	for {
		cur = cur.Offset(df, dr)
		if cur == SquareNone {
			return bb
		}
		bb = bb.WithBit(cur)
	}
}

func init() {
	buildLeaper(&pawnAttacks, func(c Color) [][2]int {
		return [][2]int{{0, forwardDelta(c)}}
	})
	buildLeaper(&knightAttacks, func(c Color) [][2]int {
		fd := forwardDelta(c)
		return [][2]int{{-1, 2 * fd}, {1, 2 * fd}}
	})
	buildLeaper(&silverAttacks, func(c Color) [][2]int {
		fd := forwardDelta(c)
		return [][2]int{{-1, fd}, {1, fd}, {0, fd}, {-1, -fd}, {1, -fd}}
	})
	buildLeaper(&goldAttacks, func(c Color) [][2]int {
		fd := forwardDelta(c)
		return [][2]int{{-1, fd}, {0, fd}, {1, fd}, {-1, 0}, {1, 0}, {0, -fd}}
	})
	for sq := Square(0); sq < SquareCount; sq++ {
		var bb Bitboard
		for _, d := range [][2]int{{-1, 1}, {-1, 0}, {-1, -1}, {0, 1}, {0, -1}, {1, 1}, {1, 0}, {1, -1}} {
			if t := sq.Offset(d[0], d[1]); t != SquareNone {
				bb = bb.WithBit(t)
			}
		}
		kingAttacks[sq] = bb

		rayN[sq] = rayMask(sq, 0, -1)
		rayS[sq] = rayMask(sq, 0, 1)
		rayE[sq] = rayMask(sq, -1, 0)
		rayW[sq] = rayMask(sq, 1, 0)
		rayNE[sq] = rayMask(sq, -1, -1)
		rayNW[sq] = rayMask(sq, 1, -1)
		raySE[sq] = rayMask(sq, -1, 1)
		raySW[sq] = rayMask(sq, 1, 1)

		lanceRayBlack[sq] = rayN[sq]
		lanceRayWhite[sq] = rayS[sq]
	}

	var acc Bitboard
	for t := 0; t < SquareCount; t++ {
		acc = acc.WithBit(Square(t))
		prefixMask[t] = acc
	}
	prefixMask[SquareCount] = acc

	acc = Bitboard{}
	for t := SquareCount - 1; t >= 0; t-- {
		acc = acc.WithBit(Square(t))
		suffixMask[t] = acc
	}
	suffixMask[SquareCount] = Bitboard{}
}

// slidingForward truncates mask (an empty-board ray of increasing
// square index) at the first blocker in occ, inclusive.
func slidingForward(occ, mask Bitboard) Bitboard {
	blockers := occ.And(mask).WithBit(SquareCount - 1)
	t := blockers.Lsb()
	return mask.And(prefixMask[t])
}

// slidingBackward truncates mask (an empty-board ray of decreasing
// square index) at the first blocker in occ, inclusive.
func slidingBackward(occ, mask Bitboard) Bitboard {
	blockers := occ.And(mask).WithBit(0)
	t := blockers.Msb()
	return mask.And(suffixMask[t])
}

// BishopAttacks returns the bishop's (and horse's diagonal component)
// attack set from sq given occupancy occ.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	return slidingBackward(occ, rayNE[sq]).
		Or(slidingForward(occ, rayNW[sq])).
		Or(slidingForward(occ, raySW[sq])).
		Or(slidingBackward(occ, raySE[sq]))
}

// RookAttacks returns the rook's (and dragon's orthogonal component)
// attack set from sq given occupancy occ.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	return slidingBackward(occ, rayN[sq]).
		Or(slidingForward(occ, rayS[sq])).
		Or(slidingBackward(occ, rayE[sq])).
		Or(slidingForward(occ, rayW[sq]))
}

// LanceAttacks returns the lance's attack set for color c from sq.
func LanceAttacks(sq Square, c Color, occ Bitboard) Bitboard {
	if c == Black {
		return slidingBackward(occ, lanceRayBlack[sq])
	}
	return slidingForward(occ, lanceRayWhite[sq])
}

func HorseAttacks(sq Square, occ Bitboard) Bitboard {
	return BishopAttacks(sq, occ).Or(kingAttacks[sq].And(rookDirMask(sq)))
}

func DragonAttacks(sq Square, occ Bitboard) Bitboard {
	return RookAttacks(sq, occ).Or(kingAttacks[sq].And(bishopDirMask(sq)))
}

// rookDirMask/bishopDirMask give the single-step orthogonal/diagonal
// neighbors of sq, used to extend horse/dragon attacks.
func rookDirMask(sq Square) Bitboard {
	return rayN[sq].And(kingAttacks[sq]).
		Or(rayS[sq].And(kingAttacks[sq])).
		Or(rayE[sq].And(kingAttacks[sq])).
		Or(rayW[sq].And(kingAttacks[sq]))
}

func bishopDirMask(sq Square) Bitboard {
	return rayNE[sq].And(kingAttacks[sq]).
		Or(rayNW[sq].And(kingAttacks[sq])).
		Or(raySE[sq].And(kingAttacks[sq])).
		Or(raySW[sq].And(kingAttacks[sq]))
}

// PieceAttacks dispatches on piece type, returning the attack set of a
// piece of type pt and color c standing on sq given occupancy occ.
// Promoted pawns/lances/knights/silvers move like gold.
func PieceAttacks(pt PieceType, sq Square, c Color, occ Bitboard) Bitboard {
	switch pt {
	case Pawn:
		return pawnAttacks[c][sq]
	case Lance:
		return LanceAttacks(sq, c, occ)
	case Knight:
		return knightAttacks[c][sq]
	case Silver:
		return silverAttacks[c][sq]
	case Gold, ProPawn, ProLance, ProKnight, ProSilver:
		return goldAttacks[c][sq]
	case Bishop:
		return BishopAttacks(sq, occ)
	case Rook:
		return RookAttacks(sq, occ)
	case King:
		return kingAttacks[sq]
	case Horse:
		return HorseAttacks(sq, occ)
	case Dragon:
		return DragonAttacks(sq, occ)
	}
	return EmptyBB
}
