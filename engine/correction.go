package engine

import (
	"math"

	"github.com/toshirosawada/hayabusa/shogi"
)

// CorrectionHistory shifts a static evaluation using outcomes of past
// searches keyed by position projections: castle (king/gold/silver
// formation), cavalry (lance/knight/pawn), king-hand, kpr, and two
// attack-key projections (XOR of splitMix64 hashes of each side's
// bishop/rook attack sets), plus a two-ply continuation component.
// This is the single coherent configuration spec §9's Open Question
// calls for: six position-key tables, weights 128/128, divisor 2048,
// clamp to ±maxBonus — following the reference correction.cpp.
const corrEntries = 1 << 14

type corrTables struct {
	castle, cavalry, hand, kpr       [corrEntries]HistoryScore
	blackAttack, whiteAttack         [corrEntries]HistoryScore
}

type CorrectionHistory struct {
	tables [2]corrTables
	cont   [corrEntries]HistoryScore
}

func (ch *CorrectionHistory) Clear() {
	*ch = CorrectionHistory{}
}

func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func hashBitboard(bb shogi.Bitboard) uint64 {
	return splitMix64(bb.Lo) ^ splitMix64(bb.Hi)
}

// attackKeys computes the black/white attack-key projections: the XOR
// of hashBitboard over every bishop/horse and rook/dragon attack set
// of that color.
func attackKeys(pos *shogi.Position) (black, white uint64) {
	occ := pos.Occupancy()
	scan := func(bb shogi.Bitboard, diag bool) uint64 {
		var key uint64
		rem := bb
		for !rem.Empty() {
			var sq shogi.Square
			sq, rem = rem.PopLsb()
			if diag {
				key ^= hashBitboard(shogi.BishopAttacks(sq, occ))
			} else {
				key ^= hashBitboard(shogi.RookAttacks(sq, occ))
			}
		}
		return key
	}
	black = scan(pos.PieceBB(shogi.Bishop, shogi.Black).Or(pos.PieceBB(shogi.Horse, shogi.Black)), true)
	black ^= scan(pos.PieceBB(shogi.Rook, shogi.Black).Or(pos.PieceBB(shogi.Dragon, shogi.Black)), false)
	white = scan(pos.PieceBB(shogi.Bishop, shogi.White).Or(pos.PieceBB(shogi.Horse, shogi.White)), true)
	white ^= scan(pos.PieceBB(shogi.Rook, shogi.White).Or(pos.PieceBB(shogi.Dragon, shogi.White)), false)
	return
}

// Bonus computes the correction-history update magnitude of spec
// §4.4/§4.7: clamp((searchScore-staticEval)*depth/8*(1+log2(complexity+1)/10), ±maxBonus).
func Bonus(depth, searchScore, staticEval, complexity int) int32 {
	factor := 1.0 + math.Log2(float64(complexity+1))/10.0
	v := float64(searchScore-staticEval) * float64(depth) / 8.0 * factor
	return int32(shogi.Clamp(v, -float64(maxBonus), float64(maxBonus)))
}

// Update applies bonus to every table for the position's current
// projections, plus the 1-and-2-ply continuation keys if available.
func (ch *CorrectionHistory) Update(pos *shogi.Position, keyHistory []uint64, bonus int32) {
	t := &ch.tables[pos.SideToMove()]
	updateEntry(&t.castle[pos.CastleKey()%corrEntries], bonus)
	updateEntry(&t.cavalry[pos.CavalryKey()%corrEntries], bonus)
	updateEntry(&t.hand[pos.KingHandKey()%corrEntries], bonus)
	updateEntry(&t.kpr[pos.KprKey()%corrEntries], bonus)

	black, white := attackKeys(pos)
	updateEntry(&t.blackAttack[black%corrEntries], bonus)
	updateEntry(&t.whiteAttack[white%corrEntries], bonus)

	n := len(keyHistory)
	for _, offset := range [2]int{1, 2} {
		if n > offset {
			idx := (pos.Key() ^ keyHistory[n-1-offset]) % corrEntries
			updateEntry(&ch.cont[idx], bonus)
		}
	}
}

// Correction returns the correction term to add to a static
// evaluation, already divided by the shared scale (2048).
func (ch *CorrectionHistory) Correction(pos *shogi.Position, keyHistory []uint64) int {
	t := &ch.tables[pos.SideToMove()]
	sum := 128 * int(t.castle[pos.CastleKey()%corrEntries])
	sum += 128 * int(t.cavalry[pos.CavalryKey()%corrEntries])
	sum += 128 * int(t.hand[pos.KingHandKey()%corrEntries])
	sum += 128 * int(t.kpr[pos.KprKey()%corrEntries])

	black, white := attackKeys(pos)
	sum += 128 * int(t.blackAttack[black%corrEntries])
	sum += 128 * int(t.whiteAttack[white%corrEntries])

	n := len(keyHistory)
	for _, offset := range [2]int{1, 2} {
		if n > offset {
			idx := (pos.Key() ^ keyHistory[n-1-offset]) % corrEntries
			sum += 128 * int(ch.cont[idx])
		}
	}
	return sum / 2048
}
