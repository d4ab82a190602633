package shogi

// Zobrist-style key tables. Keys are generated by repeated
// application of splitMix64 from a fixed seed, the same mixing
// function used by the correction-history attack-key projections,
// so the whole key scheme rests on one deterministic generator
// rather than pulling in math/rand.

func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

type keyGen struct{ state uint64 }

func (g *keyGen) next() uint64 {
	g.state = splitMix64(g.state + 1)
	return g.state
}

var (
	pieceSquareKey [PieceTypeCount][ColorCount][SquareCount]uint64
	sideToMoveKey  uint64
	handKey        [ColorCount][PieceTypeCount][19]uint64 // indexed by count, pawn needs 0..18
)

const zobristSeed = 0x590d3524d1d6301c

func init() {
	g := keyGen{state: zobristSeed}
	for pt := PieceType(0); pt < PieceTypeCount; pt++ {
		for c := Color(0); c < ColorCount; c++ {
			for sq := Square(0); sq < SquareCount; sq++ {
				pieceSquareKey[pt][c][sq] = g.next()
			}
		}
	}
	sideToMoveKey = g.next()
	for c := Color(0); c < ColorCount; c++ {
		for _, pt := range handPieceTypes {
			for n := 0; n <= MaxInHand(pt); n++ {
				handKey[c][pt][n] = g.next()
			}
		}
	}
}

// castlePieceTypes/cavalryPieceTypes/kprPieceTypes resolve spec's
// correction-history projection keys to concrete piece subsets: the
// king/gold/silver formation around the king ("castle"), the
// lance/knight/pawn skirmishers ("cavalry"), and the king/pawn/rook
// structure ("kpr"). These subsets are not given verbatim by any
// retrieved source; this is the one coherent choice used throughout.
var castlePieceTypes = []PieceType{King, Gold, Silver}
var cavalryPieceTypes = []PieceType{Lance, Knight, Pawn}
var kprPieceTypes = []PieceType{King, Pawn, Rook, Dragon}
