package shogi

import (
	"fmt"
	"strconv"
	"strings"
)

// Position is the authoritative game state. It is never mutated in
// place by search: ApplyMove returns a new value, and the per-thread
// search stack is an array of Position values (see engine's stackEntry),
// the direct analogue of make/unmake via push/pop of whole copies.
type Position struct {
	board [SquareCount]Piece

	colorBb [ColorCount]Bitboard
	pieceBb [PieceTypeCount][ColorCount]Bitboard
	occ     Bitboard

	hands [ColorCount]Hand

	stm       Color
	moveCount uint32

	key         uint64
	castleKey   uint64
	cavalryKey  uint64
	kingHandKey uint64
	kprKey      uint64

	checkers Bitboard
	pinned   [ColorCount]Bitboard

	kingSquares [ColorCount]Square

	lastMove Move
}

// StartSFEN is the standard starting position.
const StartSFEN = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

func NewStartPosition() *Position {
	pos, err := ParseSFEN(StartSFEN)
	if err != nil {
		panic(err) // unreachable: StartSFEN is a compile-time constant
	}
	return pos
}

func (p *Position) SideToMove() Color   { return p.stm }
func (p *Position) Key() uint64         { return p.key }
func (p *Position) CastleKey() uint64   { return p.castleKey }
func (p *Position) CavalryKey() uint64  { return p.cavalryKey }
func (p *Position) KingHandKey() uint64 { return p.kingHandKey }
func (p *Position) KprKey() uint64      { return p.kprKey }
func (p *Position) Checkers() Bitboard  { return p.checkers }
func (p *Position) Occupancy() Bitboard { return p.occ }
func (p *Position) ColorBB(c Color) Bitboard     { return p.colorBb[c] }
func (p *Position) PieceBB(pt PieceType, c Color) Bitboard { return p.pieceBb[pt][c] }
func (p *Position) PieceOn(sq Square) Piece      { return p.board[sq] }
func (p *Position) Hand(c Color) Hand            { return p.hands[c] }
func (p *Position) KingSquare(c Color) Square    { return p.kingSquares[c] }
func (p *Position) LastMove() Move               { return p.lastMove }
func (p *Position) MoveCount() uint32            { return p.moveCount }

func (p *Position) IsInCheck() bool { return !p.checkers.Empty() }

func pieceZobrist(piece Piece, sq Square) uint64 {
	return pieceSquareKey[piece.Type()][piece.Color()][sq]
}

// place puts piece pt/c on sq (must currently be empty) without
// touching any key; callers update keys explicitly so that both
// full-recompute and incremental paths share this primitive.
func (p *Position) place(pt PieceType, c Color, sq Square) {
	piece := MakePiece(pt, c)
	p.board[sq] = piece
	bb := SquareBB(sq)
	p.pieceBb[pt][c] = p.pieceBb[pt][c].Or(bb)
	p.colorBb[c] = p.colorBb[c].Or(bb)
	p.occ = p.occ.Or(bb)
	if pt == King {
		p.kingSquares[c] = sq
	}
}

func (p *Position) remove(sq Square) Piece {
	piece := p.board[sq]
	if piece.IsNone() {
		return piece
	}
	p.board[sq] = PieceNone
	p.pieceBb[piece.Type()][piece.Color()] = p.pieceBb[piece.Type()][piece.Color()].ClearBit(sq)
	p.colorBb[piece.Color()] = p.colorBb[piece.Color()].ClearBit(sq)
	p.occ = p.occ.ClearBit(sq)
	return piece
}

// recomputeKeys derives every rolling hash from scratch. Used after
// SFEN parsing and by tests verifying incremental updates (testable
// property 1).
func (p *Position) recomputeKeys() {
	p.key, p.castleKey, p.cavalryKey, p.kingHandKey, p.kprKey = 0, 0, 0, 0, 0
	for sq := Square(0); sq < SquareCount; sq++ {
		piece := p.board[sq]
		if piece.IsNone() {
			continue
		}
		k := pieceZobrist(piece, sq)
		p.key ^= k
		pt := Unpromoted(piece.Type())
		if pt == piece.Type() { // only unpromoted identity contributes to formation keys
			if containsPT(castlePieceTypes, pt) {
				p.castleKey ^= k
			}
			if containsPT(cavalryPieceTypes, pt) {
				p.cavalryKey ^= k
			}
			if containsPT(kprPieceTypes, pt) {
				p.kprKey ^= k
			}
		}
		if piece.Type() == King {
			p.kingHandKey ^= k
		}
	}
	if p.stm == White {
		p.key ^= sideToMoveKey
	}
	for c := Color(0); c < ColorCount; c++ {
		for _, pt := range handPieceTypes {
			n := p.hands[c].Count(pt)
			p.key ^= handKey[c][pt][n]
			p.kingHandKey ^= handKey[c][pt][n]
		}
	}
}

func containsPT(set []PieceType, pt PieceType) bool {
	for _, x := range set {
		if x == pt {
			return true
		}
	}
	return false
}

// refreshAttacks recomputes checkers and pinned sets from the current
// board; called after every move.
func (p *Position) refreshAttacks() {
	stm := p.stm
	ksq := p.kingSquares[stm]
	p.checkers = p.AttackersTo(ksq, p.occ).And(p.colorBb[stm.Opponent()])

	for _, c := range [ColorCount]Color{Black, White} {
		p.pinned[c] = p.computePinned(c)
	}
}

// computePinned returns the pieces of color c pinned against c's own
// king by an opposing slider through an otherwise empty corridor.
func (p *Position) computePinned(c Color) Bitboard {
	ksq := p.kingSquares[c]
	opp := c.Opponent()
	var pinned Bitboard

	snipers := BishopAttacks(ksq, EmptyBB).And(p.pieceBb[Bishop][opp].Or(p.pieceBb[Horse][opp])).
		Or(RookAttacks(ksq, EmptyBB).And(p.pieceBb[Rook][opp].Or(p.pieceBb[Dragon][opp]))).
		Or(LanceAttacks(ksq, c, EmptyBB).And(p.pieceBb[Lance][opp]))

	rem := snipers
	for !rem.Empty() {
		var sq Square
		sq, rem = rem.PopLsb()
		between := betweenBB(ksq, sq)
		blockers := between.And(p.occ)
		if blockers.PopCount() == 1 {
			pinned = pinned.Or(blockers.And(p.colorBb[c]))
		}
	}
	return pinned
}

// AttackersTo returns every piece (of either color) attacking sq given
// occupancy occ.
func (p *Position) AttackersTo(sq Square, occ Bitboard) Bitboard {
	var att Bitboard
	att = att.Or(pawnAttacks[White][sq].And(p.pieceBb[Pawn][Black]))
	att = att.Or(pawnAttacks[Black][sq].And(p.pieceBb[Pawn][White]))
	att = att.Or(knightAttacks[White][sq].And(p.pieceBb[Knight][Black]))
	att = att.Or(knightAttacks[Black][sq].And(p.pieceBb[Knight][White]))
	att = att.Or(silverAttacks[White][sq].And(p.pieceBb[Silver][Black]))
	att = att.Or(silverAttacks[Black][sq].And(p.pieceBb[Silver][White]))

	goldLike := p.pieceBb[Gold][Black].Or(p.pieceBb[ProPawn][Black]).Or(p.pieceBb[ProLance][Black]).
		Or(p.pieceBb[ProKnight][Black]).Or(p.pieceBb[ProSilver][Black])
	att = att.Or(goldAttacks[White][sq].And(goldLike))
	goldLikeW := p.pieceBb[Gold][White].Or(p.pieceBb[ProPawn][White]).Or(p.pieceBb[ProLance][White]).
		Or(p.pieceBb[ProKnight][White]).Or(p.pieceBb[ProSilver][White])
	att = att.Or(goldAttacks[Black][sq].And(goldLikeW))

	att = att.Or(kingAttacks[sq].And(p.pieceBb[King][Black].Or(p.pieceBb[King][White])))

	bishops := p.pieceBb[Bishop][Black].Or(p.pieceBb[Bishop][White])
	att = att.Or(BishopAttacks(sq, occ).And(bishops))
	horses := p.pieceBb[Horse][Black].Or(p.pieceBb[Horse][White])
	att = att.Or(HorseAttacks(sq, occ).And(horses))
	rooks := p.pieceBb[Rook][Black].Or(p.pieceBb[Rook][White])
	att = att.Or(RookAttacks(sq, occ).And(rooks))
	dragons := p.pieceBb[Dragon][Black].Or(p.pieceBb[Dragon][White])
	att = att.Or(DragonAttacks(sq, occ).And(dragons))

	att = att.Or(LanceAttacks(sq, White, occ).And(p.pieceBb[Lance][Black]))
	att = att.Or(LanceAttacks(sq, Black, occ).And(p.pieceBb[Lance][White]))

	return att
}

// IsSquareAttacked reports whether sq is attacked by color c.
func (p *Position) IsSquareAttacked(sq Square, c Color) bool {
	return !p.AttackersTo(sq, p.occ).And(p.colorBb[c]).Empty()
}

var betweenTable [SquareCount][SquareCount]Bitboard

func betweenBB(a, b Square) Bitboard {
	return betweenTable[a][b]
}

func init() {
	for a := Square(0); a < SquareCount; a++ {
		line := []Bitboard{rayN[a], rayS[a], rayE[a], rayW[a], rayNE[a], rayNW[a], raySE[a], raySW[a]}
		for _, ray := range line {
			rem := ray
			var seen Bitboard
			for !rem.Empty() {
				var sq Square
				sq, rem = rem.PopLsb()
				betweenTable[a][sq] = seen
				seen = seen.WithBit(sq)
			}
		}
	}
}

// ApplyMove returns the position resulting from playing m (assumed
// pseudo-legal), without checking legality of the resulting position
// for the mover's own king. Callers use IsLegal to filter before (or
// IsLegal on the result) committing to a branch.
func (p Position) ApplyMove(m Move) Position {
	np := p
	c := p.stm
	opp := c.Opponent()

	if m.IsDrop() {
		pt := m.DropPiece()
		to := m.To()
		np.place(pt, c, to)
		np.hands[c].Remove(pt)

		k := pieceZobrist(MakePiece(pt, c), to)
		np.key ^= k
		np.key ^= handKey[c][pt][p.hands[c].Count(pt)]
		np.key ^= handKey[c][pt][np.hands[c].Count(pt)]
		if containsPT(castlePieceTypes, pt) {
			np.castleKey ^= k
		}
		if containsPT(cavalryPieceTypes, pt) {
			np.cavalryKey ^= k
		}
		if containsPT(kprPieceTypes, pt) {
			np.kprKey ^= k
		}
		np.kingHandKey ^= handKey[c][pt][p.hands[c].Count(pt)]
		np.kingHandKey ^= handKey[c][pt][np.hands[c].Count(pt)]
	} else {
		from, to := m.From(), m.To()
		moving := np.remove(from)
		pt := moving.Type()

		if captured := np.remove(to); !captured.IsNone() {
			capType := Unpromoted(captured.Type())
			np.key ^= pieceZobrist(captured, to)
			np.hands[c].Add(capType)
			np.key ^= handKey[c][capType][p.hands[c].Count(capType)]
			np.key ^= handKey[c][capType][np.hands[c].Count(capType)]
			np.kingHandKey ^= handKey[c][capType][p.hands[c].Count(capType)]
			np.kingHandKey ^= handKey[c][capType][np.hands[c].Count(capType)]
			if Unpromoted(captured.Type()) == captured.Type() { // only unpromoted identity contributes to formation keys
				if containsPT(castlePieceTypes, capType) {
					np.castleKey ^= pieceZobrist(captured, to)
				}
				if containsPT(cavalryPieceTypes, capType) {
					np.cavalryKey ^= pieceZobrist(captured, to)
				}
				if containsPT(kprPieceTypes, capType) {
					np.kprKey ^= pieceZobrist(captured, to)
				}
			}
		}

		newType := pt
		if m.IsPromotion() {
			newType = Promoted(pt)
		}
		np.place(newType, c, to)

		np.key ^= pieceZobrist(moving, from)
		np.key ^= pieceZobrist(MakePiece(newType, c), to)

		if Unpromoted(pt) == pt {
			if containsPT(castlePieceTypes, pt) {
				np.castleKey ^= pieceZobrist(moving, from)
			}
			if containsPT(cavalryPieceTypes, pt) {
				np.cavalryKey ^= pieceZobrist(moving, from)
			}
			if containsPT(kprPieceTypes, pt) {
				np.kprKey ^= pieceZobrist(moving, from)
			}
		}
		if Unpromoted(newType) == newType {
			if containsPT(castlePieceTypes, newType) {
				np.castleKey ^= pieceZobrist(MakePiece(newType, c), to)
			}
			if containsPT(cavalryPieceTypes, newType) {
				np.cavalryKey ^= pieceZobrist(MakePiece(newType, c), to)
			}
			if containsPT(kprPieceTypes, newType) {
				np.kprKey ^= pieceZobrist(MakePiece(newType, c), to)
			}
		}
		if pt == King || newType == King {
			np.kingHandKey ^= pieceZobrist(moving, from)
			np.kingHandKey ^= pieceZobrist(MakePiece(newType, c), to)
		}
	}

	np.key ^= sideToMoveKey
	np.stm = opp
	np.moveCount = p.moveCount + 1
	np.lastMove = m
	_ = opp
	np.refreshAttacks()
	return np
}

// ApplyNullMove flips the side to move without placing a move on the
// board, for null-move pruning (spec §4.7). The board, hands and
// every piece-projection key are untouched; only the side-to-move key
// and checkers/pinned state (recomputed for the new side) change.
func (p Position) ApplyNullMove() Position {
	np := p
	np.key ^= sideToMoveKey
	np.stm = p.stm.Opponent()
	np.lastMove = MoveNone
	np.refreshAttacks()
	return np
}

// IsLegal reports whether move m, pseudo-legal in p, leaves the mover
// (p.stm) not attacked after being played.
func (p *Position) IsLegal(m Move) bool {
	c := p.stm
	if !m.IsDrop() && p.board[m.From()].Type() == King {
		np := p.ApplyMove(m)
		return !np.IsSquareAttacked(np.kingSquares[c], c.Opponent())
	}
	np := p.ApplyMove(m)
	return !np.IsSquareAttacked(np.kingSquares[c], c.Opponent())
}

// SFEN renders the position in Shogi Forsyth-Edwards Notation.
func (p *Position) SFEN() string {
	var sb strings.Builder
	for rank := 0; rank < 9; rank++ {
		empties := 0
		for file := 0; file < 9; file++ {
			sq := MakeSquare(file, rank)
			piece := p.board[sq]
			if piece.IsNone() {
				empties++
				continue
			}
			if empties > 0 {
				sb.WriteString(strconv.Itoa(empties))
				empties = 0
			}
			letter := piece.Type().String()
			if piece.Color() == Black {
				letter = strings.ToUpper(strings.TrimPrefix(letter, "+"))
				if IsPromoted(piece.Type()) {
					letter = "+" + letter
				}
			} else {
				base := strings.ToLower(strings.TrimPrefix(letter, "+"))
				letter = base
				if IsPromoted(piece.Type()) {
					letter = "+" + letter
				}
			}
			sb.WriteString(letter)
		}
		if empties > 0 {
			sb.WriteString(strconv.Itoa(empties))
		}
		if rank != 8 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(p.stm.String())
	sb.WriteByte(' ')

	handStr := handToSFEN(p.hands[Black], p.hands[White])
	sb.WriteString(handStr)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(int(p.moveCount) + 1))
	return sb.String()
}

func handToSFEN(black, white Hand) string {
	var sb strings.Builder
	order := []PieceType{Rook, Bishop, Gold, Silver, Knight, Lance, Pawn}
	for _, pt := range order {
		if n := black.Count(pt); n > 0 {
			if n > 1 {
				sb.WriteString(strconv.Itoa(n))
			}
			sb.WriteString(strings.ToUpper(pt.String()))
		}
	}
	for _, pt := range order {
		if n := white.Count(pt); n > 0 {
			if n > 1 {
				sb.WriteString(strconv.Itoa(n))
			}
			sb.WriteString(strings.ToLower(pt.String()))
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}

var sfenLetterToType = map[byte]PieceType{
	'p': Pawn, 'l': Lance, 'n': Knight, 's': Silver, 'g': Gold,
	'b': Bishop, 'r': Rook, 'k': King,
}

// ParseSFEN parses a full SFEN record: board, side to move, hands, ply.
func ParseSFEN(sfen string) (*Position, error) {
	fields := strings.Fields(sfen)
	if len(fields) < 3 {
		return nil, fmt.Errorf("shogi: malformed sfen %q", sfen)
	}
	p := &Position{}
	p.kingSquares[Black] = SquareNone
	p.kingSquares[White] = SquareNone

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 9 {
		return nil, fmt.Errorf("shogi: sfen needs 9 ranks, got %d", len(ranks))
	}
	for rank, rowText := range ranks {
		file := 0
		promoted := false
		for i := 0; i < len(rowText); i++ {
			ch := rowText[i]
			switch {
			case ch == '+':
				promoted = true
			case ch >= '1' && ch <= '9':
				file += int(ch - '0')
			default:
				lower := ch | 0x20
				pt, ok := sfenLetterToType[lower]
				if !ok {
					return nil, fmt.Errorf("shogi: bad piece letter %q", string(ch))
				}
				if promoted {
					pt = Promoted(pt)
				}
				color := Black
				if ch >= 'a' && ch <= 'z' {
					color = White
				}
				if file > 8 {
					return nil, fmt.Errorf("shogi: rank %d overflows", rank)
				}
				p.place(pt, color, MakeSquare(file, rank))
				file++
				promoted = false
			}
		}
	}

	switch fields[1] {
	case "b":
		p.stm = Black
	case "w":
		p.stm = White
	default:
		return nil, fmt.Errorf("shogi: bad side to move %q", fields[1])
	}

	if fields[2] != "-" {
		count := 0
		for i := 0; i < len(fields[2]); i++ {
			ch := fields[2][i]
			if ch >= '0' && ch <= '9' {
				count = count*10 + int(ch-'0')
				continue
			}
			lower := ch | 0x20
			pt, ok := sfenLetterToType[lower]
			if !ok || pt == King {
				return nil, fmt.Errorf("shogi: bad hand piece %q", string(ch))
			}
			color := Black
			if ch >= 'a' && ch <= 'z' {
				color = White
			}
			if count == 0 {
				count = 1
			}
			for n := 0; n < count; n++ {
				p.hands[color].Add(pt)
			}
			count = 0
		}
	}

	if len(fields) >= 4 {
		if n, err := strconv.Atoi(fields[3]); err == nil && n > 0 {
			p.moveCount = uint32(n - 1)
		}
	}

	p.recomputeKeys()
	p.refreshAttacks()
	return p, nil
}
