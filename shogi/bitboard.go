package shogi

import "math/bits"

// Bitboard is an 81-bit set of squares, stored as two 64-bit limbs:
// Lo holds squares 0-63, Hi holds squares 64-80. Bits 81-127 of Hi are
// always zero.
type Bitboard struct {
	Lo, Hi uint64
}

const hiMask = (1 << (SquareCount - 64)) - 1 // valid bits of Hi: 0..16

var EmptyBB = Bitboard{}

// SquareBB returns the singleton bitboard for sq.
func SquareBB(sq Square) Bitboard {
	if sq < 64 {
		return Bitboard{Lo: 1 << uint(sq)}
	}
	return Bitboard{Hi: 1 << uint(sq-64)}
}

func (b Bitboard) Empty() bool { return b.Lo == 0 && b.Hi == 0 }

func (b Bitboard) Or(o Bitboard) Bitboard  { return Bitboard{b.Lo | o.Lo, b.Hi | o.Hi} }
func (b Bitboard) And(o Bitboard) Bitboard { return Bitboard{b.Lo & o.Lo, b.Hi & o.Hi} }
func (b Bitboard) Xor(o Bitboard) Bitboard { return Bitboard{b.Lo ^ o.Lo, b.Hi ^ o.Hi} }

// AndNot returns b &^ o.
func (b Bitboard) AndNot(o Bitboard) Bitboard {
	return Bitboard{b.Lo &^ o.Lo, b.Hi &^ o.Hi}
}

// Not returns the complement, masked to 81 bits.
func (b Bitboard) Not() Bitboard {
	return Bitboard{^b.Lo, ^b.Hi & hiMask}
}

func (b Bitboard) Test(sq Square) bool {
	return !b.And(SquareBB(sq)).Empty()
}

func (b Bitboard) WithBit(sq Square) Bitboard {
	return b.Or(SquareBB(sq))
}

func (b Bitboard) ClearBit(sq Square) Bitboard {
	return b.AndNot(SquareBB(sq))
}

// PopCount returns the number of set squares.
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(b.Lo) + bits.OnesCount64(b.Hi)
}

// MoreThanOne reports whether at least two squares are set.
func (b Bitboard) MoreThanOne() bool {
	if b.Lo != 0 && b.Hi != 0 {
		return true
	}
	if b.Lo != 0 {
		return b.Lo&(b.Lo-1) != 0
	}
	return b.Hi&(b.Hi-1) != 0
}

// Lsb returns the lowest-numbered set square, or SquareNone if empty.
func (b Bitboard) Lsb() Square {
	if b.Lo != 0 {
		return Square(bits.TrailingZeros64(b.Lo))
	}
	if b.Hi != 0 {
		return Square(64 + bits.TrailingZeros64(b.Hi))
	}
	return SquareNone
}

// Msb returns the highest-numbered set square, or SquareNone if empty.
func (b Bitboard) Msb() Square {
	if b.Hi != 0 {
		return Square(64 + 63 - bits.LeadingZeros64(b.Hi))
	}
	if b.Lo != 0 {
		return Square(63 - bits.LeadingZeros64(b.Lo))
	}
	return SquareNone
}

// PopLsb returns the lowest set square and the bitboard with that
// square cleared.
func (b Bitboard) PopLsb() (Square, Bitboard) {
	sq := b.Lsb()
	if sq == SquareNone {
		return SquareNone, b
	}
	return sq, b.ClearBit(sq)
}

// shiftLeft/shiftRight shift the 81-bit value as a whole, handling the
// carry across the Lo/Hi boundary. n must be in [0,80].
func (b Bitboard) shiftLeft(n uint) Bitboard {
	if n == 0 {
		return b
	}
	if n >= 81 {
		return EmptyBB
	}
	whole := [2]uint64{b.Lo, b.Hi}
	var out [2]uint64
	bitOff := n % 64
	limbOff := n / 64
	for i := 1; i >= 0; i-- {
		srcIdx := i - int(limbOff)
		if srcIdx < 0 {
			continue
		}
		v := whole[srcIdx] << bitOff
		if bitOff != 0 && srcIdx-1 >= 0 {
			v |= whole[srcIdx-1] >> (64 - bitOff)
		}
		out[i] = v
	}
	return Bitboard{Lo: out[0], Hi: out[1] & hiMask}
}

func (b Bitboard) shiftRight(n uint) Bitboard {
	if n == 0 {
		return b
	}
	if n >= 81 {
		return EmptyBB
	}
	whole := [2]uint64{b.Lo, b.Hi}
	var out [2]uint64
	bitOff := n % 64
	limbOff := n / 64
	for i := 0; i < 2; i++ {
		srcIdx := i + int(limbOff)
		if srcIdx > 1 {
			continue
		}
		v := whole[srcIdx] >> bitOff
		if bitOff != 0 && srcIdx+1 <= 1 {
			v |= whole[srcIdx+1] << (64 - bitOff)
		}
		out[i] = v
	}
	return Bitboard{Lo: out[0], Hi: out[1] & hiMask}
}

// fileMask returns the bitboard of all 9 squares on the given file.
func fileMask(file int) Bitboard {
	var b Bitboard
	for r := 0; r < 9; r++ {
		b = b.WithBit(MakeSquare(file, r))
	}
	return b
}

var fileMasks [9]Bitboard
var rankMasks [9]Bitboard
var notFileA, notFileI Bitboard // file 0 ("9" file) and file 8 ("1" file)

func init() {
	for f := 0; f < 9; f++ {
		fileMasks[f] = fileMask(f)
	}
	for r := 0; r < 9; r++ {
		var b Bitboard
		for f := 0; f < 9; f++ {
			b = b.WithBit(MakeSquare(f, r))
		}
		rankMasks[r] = b
	}
	all := Bitboard{}.Not()
	notFileA = all.AndNot(fileMasks[0])
	notFileI = all.AndNot(fileMasks[8])
}

// North/South move a bitboard one rank towards rank 0 / rank 8.
// East/West move towards file 0 / file 8 ("file 9" / "file 1" in USI
// text). These are board-relative (Black's forward is North), not
// color-relative; see ShiftForward for the color-relative version.
func (b Bitboard) North() Bitboard { return b.AndNot(rankMasks[0]).shiftRight(1) }
func (b Bitboard) South() Bitboard { return b.AndNot(rankMasks[8]).shiftLeft(1) }
func (b Bitboard) East() Bitboard  { return b.AndNot(fileMasks[0]).shiftRight(9) }
func (b Bitboard) West() Bitboard  { return b.AndNot(fileMasks[8]).shiftLeft(9) }

func (b Bitboard) NorthEast() Bitboard { return b.East().North() }
func (b Bitboard) NorthWest() Bitboard { return b.West().North() }
func (b Bitboard) SouthEast() Bitboard { return b.East().South() }
func (b Bitboard) SouthWest() Bitboard { return b.West().South() }

// ShiftForward shifts towards color c's promotion zone.
func (b Bitboard) ShiftForward(c Color) Bitboard {
	if c == Black {
		return b.North()
	}
	return b.South()
}

// FillFile broadcasts every occupied square to every rank of its file.
func (b Bitboard) FillFile() Bitboard {
	var out Bitboard
	for f := 0; f < 9; f++ {
		if !b.And(fileMasks[f]).Empty() {
			out = out.Or(fileMasks[f])
		}
	}
	return out
}

// Relative rotates the set 180 degrees (each square s maps to 80-s).
func (b Bitboard) Relative(c Color) Bitboard {
	if c == Black {
		return b
	}
	var out Bitboard
	rem := b
	for !rem.Empty() {
		var sq Square
		sq, rem = rem.PopLsb()
		out = out.WithBit(sq.Relative(White))
	}
	return out
}
