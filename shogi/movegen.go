package shogi

// MaxMoves bounds the size of a move list; shogi positions with many
// drops can reach into the several hundreds, so the list is generous
// but still stack-bounded per spec's resource policy.
const MaxMoves = 600

// MoveList is a fixed-capacity, stack-allocatable move buffer.
type MoveList struct {
	Moves [MaxMoves]Move
	Size  int
}

func (l *MoveList) add(m Move) {
	if l.Size < MaxMoves {
		l.Moves[l.Size] = m
		l.Size++
	}
}

var slidingPieceTypes = [...]PieceType{Lance, Bishop, Rook, Horse, Dragon}

func boardPieceTypes() []PieceType {
	return []PieceType{Pawn, Lance, Knight, Silver, Gold, Bishop, Rook, King,
		ProPawn, ProLance, ProKnight, ProSilver, Horse, Dragon}
}

// GenerateAll generates every pseudo-legal move (board moves and
// drops), honoring check-evasion restrictions.
func (p *Position) GenerateAll(list *MoveList) {
	p.generate(list, true, true)
}

// GenerateCaptures generates captures plus promotions that capture,
// for quiescence search (no drops: drops never capture).
func (p *Position) GenerateCaptures(list *MoveList) {
	p.generate(list, false, false)
}

// GenerateNonCaptures generates quiet board moves and drops.
func (p *Position) GenerateNonCaptures(list *MoveList) {
	p.generate(list, true, true)
	// filter out captures in place
	n := 0
	for i := 0; i < list.Size; i++ {
		m := list.Moves[i]
		if m.IsDrop() || p.board[m.To()].IsNone() {
			list.Moves[n] = m
			n++
		}
	}
	list.Size = n
}

// generate is the core enumerator. With includeQuiet false, king and
// board-move destinations are restricted to occupied-by-opponent
// squares; drops are suppressed when includeDrops is false.
func (p *Position) generate(list *MoveList, includeDrops bool, includeQuiet bool) {
	c := p.stm
	opp := c.Opponent()
	ksq := p.kingSquares[c]

	kingMask := p.colorBb[c].Not()
	if !includeQuiet {
		kingMask = p.colorBb[opp]
	}
	// King moves are always considered first, per spec.
	p.generateKingMoves(list, kingMask)

	if p.checkers.MoreThanOne() {
		return // double check: only king moves are legal
	}

	dstMask := p.occ.Not() // empty squares
	if includeQuiet {
		dstMask = dstMask.Or(p.colorBb[opp])
	} else {
		dstMask = p.colorBb[opp]
	}
	dropMask := p.occ.Not()

	if !p.checkers.Empty() {
		checkerSq := p.checkers.Lsb()
		ray := betweenBB(ksq, checkerSq).WithBit(checkerSq)
		dstMask = dstMask.And(ray)
		dropMask = dropMask.And(ray)
	}

	p.generateBoardMoves(list, dstMask)
	if includeDrops {
		p.generateDrops(list, dropMask)
	}
}

func (p *Position) generateKingMoves(list *MoveList, mask Bitboard) {
	c := p.stm
	ksq := p.kingSquares[c]
	dst := kingAttacks[ksq].And(mask)
	rem := dst
	for !rem.Empty() {
		var to Square
		to, rem = rem.PopLsb()
		list.add(NewMove(ksq, to, false))
	}
}

func (p *Position) generateBoardMoves(list *MoveList, dstMask Bitboard) {
	c := p.stm
	for _, pt := range boardPieceTypes() {
		if pt == King {
			continue
		}
		rem := p.pieceBb[pt][c]
		for !rem.Empty() {
			var from Square
			from, rem = rem.PopLsb()
			atk := PieceAttacks(pt, from, c, p.occ).And(dstMask)
			dst := atk
			for !dst.Empty() {
				var to Square
				to, dst = dst.PopLsb()
				p.addBoardMove(list, pt, c, from, to)
			}
		}
	}
}

// addBoardMove applies shogi's promotion policy: a piece capable of
// promotion offers both the promoting and non-promoting form whenever
// either endpoint touches the promotion zone, except pawns/lances/
// knights must promote when standing on a square from which they
// would otherwise have no legal move.
func (p *Position) addBoardMove(list *MoveList, pt PieceType, c Color, from, to Square) {
	if !CanPromote(pt) {
		list.add(NewMove(from, to, false))
		return
	}
	zone := InPromotionZone(from, c) || InPromotionZone(to, c)
	mustPromote := false
	switch pt {
	case Pawn, Lance:
		mustPromote = LastRank(to, c)
	case Knight:
		mustPromote = LastTwoRanks(to, c)
	}
	if zone {
		list.add(NewMove(from, to, true))
	}
	if !mustPromote {
		list.add(NewMove(from, to, false))
	}
}

func (p *Position) generateDrops(list *MoveList, dropMask Bitboard) {
	c := p.stm
	hand := p.hands[c]
	for _, pt := range handPieceTypes {
		if hand.Count(pt) == 0 {
			continue
		}
		mask := dropMask
		switch pt {
		case Pawn:
			nifuFiles := p.pieceBb[Pawn][c].FillFile()
			mask = mask.AndNot(nifuFiles)
			mask = mask.AndNot(lastRankMask(c))
		case Lance:
			mask = mask.AndNot(lastRankMask(c))
		case Knight:
			mask = mask.AndNot(lastTwoRanksMask(c))
		}
		rem := mask
		for !rem.Empty() {
			var to Square
			to, rem = rem.PopLsb()
			if pt == Pawn && wouldBeUchifuzume(p, c, to) {
				continue
			}
			list.add(NewDrop(pt, to))
		}
	}
}

func lastRankMask(c Color) Bitboard {
	if c == Black {
		return rankMasks[0]
	}
	return rankMasks[8]
}

func lastTwoRanksMask(c Color) Bitboard {
	if c == Black {
		return rankMasks[0].Or(rankMasks[1])
	}
	return rankMasks[7].Or(rankMasks[8])
}

// wouldBeUchifuzume tests whether dropping a pawn for color c at to
// delivers an immediate, inescapable checkmate to the opponent
// (uchi-fu-zume), which is illegal.
func wouldBeUchifuzume(p *Position, c Color, to Square) bool {
	opp := c.Opponent()
	oppKing := p.kingSquares[opp]
	if !pawnAttacks[c][to].Test(oppKing) {
		return false // doesn't even check the king, not uchi-fu-zume
	}
	np := p.ApplyMove(NewDrop(Pawn, to))
	if np.checkers.Empty() {
		return false
	}
	var evasions MoveList
	np.GenerateAll(&evasions)
	for i := 0; i < evasions.Size; i++ {
		if np.IsLegal(evasions.Moves[i]) {
			return false // opponent has an escape: not mate, legal drop
		}
	}
	return true
}

// GenerateLegalMoves fills list with only moves that pass IsLegal.
func (p *Position) GenerateLegalMoves(list *MoveList) {
	var pseudo MoveList
	p.GenerateAll(&pseudo)
	for i := 0; i < pseudo.Size; i++ {
		if p.IsLegal(pseudo.Moves[i]) {
			list.add(pseudo.Moves[i])
		}
	}
}
