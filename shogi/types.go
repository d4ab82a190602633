// Package shogi implements the 9x9 board representation, attack
// tables, move generation and static-exchange evaluation shared by
// the rest of the engine.
package shogi

import "fmt"

// Color is one of the two sides.
type Color int8

const (
	Black Color = iota // sente, moves first
	White              // gote
	ColorCount
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// PieceType enumerates the 14 piece kinds, including the six promoted
// forms. Gold and King never promote.
type PieceType int8

const (
	PieceTypeNone PieceType = iota
	Pawn
	Lance
	Knight
	Silver
	Gold
	Bishop
	Rook
	King
	ProPawn
	ProLance
	ProKnight
	ProSilver
	Horse // promoted bishop
	Dragon
	PieceTypeCount
)

var promotedOf = [PieceTypeCount]PieceType{
	Pawn:   ProPawn,
	Lance:  ProLance,
	Knight: ProKnight,
	Silver: ProSilver,
	Bishop: Horse,
	Rook:   Dragon,
}

var unpromotedOf = [PieceTypeCount]PieceType{
	ProPawn:   Pawn,
	ProLance:  Lance,
	ProKnight: Knight,
	ProSilver: Silver,
	Horse:     Bishop,
	Dragon:    Rook,
}

// CanPromote reports whether pt has a promoted form.
func CanPromote(pt PieceType) bool {
	return promotedOf[pt] != PieceTypeNone
}

// Promoted returns the promoted form of pt, or pt itself if none exists.
func Promoted(pt PieceType) PieceType {
	if p := promotedOf[pt]; p != PieceTypeNone {
		return p
	}
	return pt
}

// Unpromoted strips promotion from pt.
func Unpromoted(pt PieceType) PieceType {
	if u := unpromotedOf[pt]; u != PieceTypeNone {
		return u
	}
	return pt
}

// IsPromoted reports whether pt is one of the six promoted forms.
func IsPromoted(pt PieceType) bool {
	return pt >= ProPawn && pt <= Dragon
}

var pieceTypeLetters = [PieceTypeCount]string{
	Pawn: "P", Lance: "L", Knight: "N", Silver: "S", Gold: "G",
	Bishop: "B", Rook: "R", King: "K",
	ProPawn: "+P", ProLance: "+L", ProKnight: "+N", ProSilver: "+S",
	Horse: "+B", Dragon: "+R",
}

func (pt PieceType) String() string {
	return pieceTypeLetters[pt]
}

// Piece is a (PieceType, Color) pair packed into a byte, plus a None
// sentinel.
type Piece uint8

const PieceNone Piece = 0

// MakePiece packs a piece type and color.
func MakePiece(pt PieceType, c Color) Piece {
	return Piece(pt)<<1 | Piece(c)
}

func (p Piece) Type() PieceType {
	return PieceType(p >> 1)
}

func (p Piece) Color() Color {
	return Color(p & 1)
}

func (p Piece) IsNone() bool {
	return p == PieceNone
}

func (p Piece) String() string {
	if p.IsNone() {
		return "."
	}
	s := p.Type().String()
	if p.Color() == White {
		return "v" + s
	}
	return s
}

// Square is one cell of the 9x9 board, numbered file*9+rank with file
// and rank both 0-indexed (file 0 = the "9" file, rank 0 = rank "a").
type Square int8

const SquareNone Square = -1
const SquareCount = 81

// MakeSquare builds a Square from 0-indexed file and rank.
func MakeSquare(file, rank int) Square {
	return Square(file*9 + rank)
}

func (s Square) File() int { return int(s) / 9 }
func (s Square) Rank() int { return int(s) % 9 }

// FlipFile mirrors the square horizontally (file f <-> file 8-f).
func (s Square) FlipFile() Square {
	return MakeSquare(8-s.File(), s.Rank())
}

// FlipRank mirrors the square vertically.
func (s Square) FlipRank() Square {
	return MakeSquare(s.File(), 8-s.Rank())
}

// Relative rotates the square 180 degrees, i.e. the same square as
// seen by the other color.
func (s Square) Relative(c Color) Square {
	if c == Black {
		return s
	}
	return Square(SquareCount - 1 - int(s))
}

// Offset returns s shifted by (df, dr), or SquareNone if off-board.
func (s Square) Offset(df, dr int) Square {
	f, r := s.File()+df, s.Rank()+dr
	if f < 0 || f > 8 || r < 0 || r > 8 {
		return SquareNone
	}
	return MakeSquare(f, r)
}

var fileNames = [9]byte{'9', '8', '7', '6', '5', '4', '3', '2', '1'}
var rankNames = [9]byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i'}

func (s Square) String() string {
	if s == SquareNone {
		return "-"
	}
	return fmt.Sprintf("%c%c", fileNames[s.File()], rankNames[s.Rank()])
}

// ParseSquare parses USI-style square text ("5e") back to a Square.
func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return SquareNone, fmt.Errorf("shogi: bad square %q", text)
	}
	file, rank := -1, -1
	for i, c := range fileNames {
		if text[0] == c {
			file = i
		}
	}
	for i, c := range rankNames {
		if text[1] == c {
			rank = i
		}
	}
	if file < 0 || rank < 0 {
		return SquareNone, fmt.Errorf("shogi: bad square %q", text)
	}
	return MakeSquare(file, rank), nil
}

// InPromotionZone reports whether sq lies in color c's promotion zone
// (the mover's top three ranks).
func InPromotionZone(sq Square, c Color) bool {
	r := sq.Relative(c).Rank()
	return r <= 2
}

// LastRank reports whether sq is c's farthest rank (pawn/lance cannot
// stand there unpromoted).
func LastRank(sq Square, c Color) bool {
	return sq.Relative(c).Rank() == 0
}

// LastTwoRanks reports whether sq is one of c's farthest two ranks
// (a knight cannot stand there unpromoted).
func LastTwoRanks(sq Square, c Color) bool {
	return sq.Relative(c).Rank() <= 1
}
