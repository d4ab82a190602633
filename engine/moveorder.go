package engine

import (
	"sort"

	"github.com/toshirosawada/hayabusa/shogi"
)

// scoredMove pairs a move with an ordering score; orderMoves sorts a
// generated list once per node, a simpler realization of spec
// §4.7's staged ordering (TT move, captures, killers, quiets) than a
// true lazily-staged iterator, trading a little node-level efficiency
// for a much smaller surface to get right without the ability to
// run the engine.
type scoredMove struct {
	move  shogi.Move
	score int32
}

const (
	ttMoveScore    = 1 << 30
	killerScore    = 1 << 20
	captureBase    = 1 << 24
)

func (t *Thread) orderMoves(pos *shogi.Position, list *shogi.MoveList, ttMove shogi.Move, ply int) []scoredMove {
	scored := make([]scoredMove, 0, list.Size)
	for i := 0; i < list.Size; i++ {
		m := list.Moves[i]
		var score int32
		switch {
		case m == ttMove:
			score = ttMoveScore
		case !m.IsDrop() && !pos.PieceOn(m.To()).IsNone():
			captured := pos.PieceOn(m.To()).Type()
			attacker := shogi.PieceTypeNone
			if !m.IsDrop() {
				attacker = pos.PieceOn(m.From()).Type()
			}
			score = captureBase + mvvValue(captured)*64 - mvvValue(attacker) + int32(t.history.CaptureScore(m, captured))
		case m == t.history.Killer1(ply):
			score = killerScore + 1
		case m == t.history.Killer2(ply):
			score = killerScore
		default:
			score = int32(t.historyScore(pos, m, ply))
		}
		scored = append(scored, scoredMove{m, score})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	return scored
}

func (t *Thread) historyScore(pos *shogi.Position, m shogi.Move, ply int) int {
	if m.IsDrop() {
		return t.history.DropScore(m)
	}
	score := t.history.NonCaptureScore(pos.SideToMove(), m)
	for _, back := range [3]int{1, 2, 3} {
		if ply >= back {
			priorKey := t.keyAt(ply - back)
			score += t.history.ContScore(pos.Key(), priorKey)
		}
	}
	return score
}

func mvvValue(pt shogi.PieceType) int32 {
	return int32(pieceValueMVV[pt])
}

var pieceValueMVV = [shogi.PieceTypeCount]int{
	shogi.Pawn: 1, shogi.Lance: 3, shogi.Knight: 4, shogi.Silver: 5, shogi.Gold: 5,
	shogi.Bishop: 8, shogi.Rook: 9, shogi.King: 0,
	shogi.ProPawn: 5, shogi.ProLance: 5, shogi.ProKnight: 5, shogi.ProSilver: 5,
	shogi.Horse: 11, shogi.Dragon: 12,
}
