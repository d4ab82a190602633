package shogi

import "fmt"

// Move is a 16-bit packed value encoding one of three shapes:
// Normal (from, to, promote=false), Promotion (from, to, promote=true),
// or Drop (dropType, to), with the from field reused to carry the
// dropped piece type. MoveNone is the all-zero value.
type Move uint16

const MoveNone Move = 0

const (
	moveToShift      = 0
	moveFromShift    = 7
	movePromoteShift = 14
	moveDropShift    = 15
	moveSquareMask   = 0x7f
)

// NewMove builds a non-drop move.
func NewMove(from, to Square, promote bool) Move {
	m := Move(to)<<moveToShift | Move(from)<<moveFromShift
	if promote {
		m |= 1 << movePromoteShift
	}
	return m
}

// NewDrop builds a drop move placing pt at to.
func NewDrop(pt PieceType, to Square) Move {
	return Move(to)<<moveToShift | Move(pt)<<moveFromShift | 1<<moveDropShift
}

func (m Move) To() Square {
	return Square(m >> moveToShift & moveSquareMask)
}

func (m Move) From() Square {
	return Square(m >> moveFromShift & moveSquareMask)
}

func (m Move) IsPromotion() bool {
	return m&(1<<movePromoteShift) != 0
}

func (m Move) IsDrop() bool {
	return m&(1<<moveDropShift) != 0
}

// DropPiece returns the piece type being dropped; valid only if
// IsDrop is true.
func (m Move) DropPiece() PieceType {
	return PieceType(m >> moveFromShift & moveSquareMask)
}

func (m Move) IsNone() bool {
	return m == MoveNone
}

// String renders USI notation: drops as "P*5e", promotions as "7g7f+".
func (m Move) String() string {
	if m.IsNone() {
		return "resign"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%s*%s", m.DropPiece().String(), m.To().String())
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += "+"
	}
	return s
}
