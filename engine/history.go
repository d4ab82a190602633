package engine

import (
	"github.com/toshirosawada/hayabusa/shogi"
)

// HistoryScore is the signed cell type used by every gravity-updated
// table in this file, matching spec §4.4.
type HistoryScore = int16

const contEntries = 66536

// clampHistory keeps the gravity update rule's 16-bit cell within range.
func clampHistory(v int32) HistoryScore {
	return HistoryScore(shogi.Clamp(v, -32768, 32767))
}

func updateEntry(v *HistoryScore, bonus int32) {
	abs := bonus
	if abs < 0 {
		abs = -abs
	}
	nv := int32(*v) + bonus - int32(*v)*abs/16384
	*v = clampHistory(nv)
}

// HistoryBonus computes the depth-scaled bonus/malus magnitude of
// spec §4.4: clamp(depth*823-300, 0, 2500).
func HistoryBonus(depth int) int32 {
	return shogi.Clamp(int32(depth)*823-300, 0, 2500)
}

// History holds every per-thread heuristic table: butterfly,
// drop, capture and continuation history.
type History struct {
	// [stm][promo][from][to]
	nonCaptureNonDrop [2][2][shogi.SquareCount][shogi.SquareCount]HistoryScore
	// [dropPiece][to]
	drop [shogi.PieceTypeCount][shogi.SquareCount]HistoryScore
	// [promo][from][to][captured]
	capture [2][shogi.SquareCount][shogi.SquareCount][shogi.PieceTypeCount]HistoryScore

	cont [contEntries]HistoryScore

	killers [maxPly][2]shogi.Move
}

func (h *History) Clear() {
	*h = History{}
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (h *History) NonCaptureScore(stm shogi.Color, m shogi.Move) int {
	return int(h.nonCaptureNonDrop[stm][boolIdx(m.IsPromotion())][m.From()][m.To()])
}

func (h *History) UpdateNonCapture(stm shogi.Color, m shogi.Move, bonus int32) {
	updateEntry(&h.nonCaptureNonDrop[stm][boolIdx(m.IsPromotion())][m.From()][m.To()], bonus)
}

func (h *History) DropScore(m shogi.Move) int {
	return int(h.drop[m.DropPiece()][m.To()])
}

func (h *History) UpdateDrop(m shogi.Move, bonus int32) {
	updateEntry(&h.drop[m.DropPiece()][m.To()], bonus)
}

func (h *History) CaptureScore(m shogi.Move, captured shogi.PieceType) int {
	return int(h.capture[boolIdx(m.IsPromotion())][m.From()][m.To()][captured])
}

func (h *History) UpdateCapture(m shogi.Move, captured shogi.PieceType, bonus int32) {
	updateEntry(&h.capture[boolIdx(m.IsPromotion())][m.From()][m.To()][captured], bonus)
}

// contIndex composes the continuation-history index: the XOR of the
// current position key with the key N plies back.
func contIndex(currentKey, priorKey uint64) int {
	return int((currentKey ^ priorKey) % contEntries)
}

func (h *History) ContScore(currentKey, priorKey uint64) int {
	return int(h.cont[contIndex(currentKey, priorKey)])
}

func (h *History) UpdateCont(currentKey, priorKey uint64, bonus int32) {
	updateEntry(&h.cont[contIndex(currentKey, priorKey)], bonus)
}

func (h *History) Killer1(ply int) shogi.Move { return h.killers[ply][0] }
func (h *History) Killer2(ply int) shogi.Move { return h.killers[ply][1] }

func (h *History) AddKiller(ply int, m shogi.Move) {
	if h.killers[ply][0] == m {
		return
	}
	h.killers[ply][1] = h.killers[ply][0]
	h.killers[ply][0] = m
}
