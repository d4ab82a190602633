package engine

import (
	"github.com/toshirosawada/hayabusa/shogi"
)

// stackEntry is one ply's worth of search-local state, addressed by
// ply index within a Thread — the realization of spec §3's StateStack,
// kept as whole Position values rather than incremental make/unmake,
// per DESIGN.md's documented simplification.
type stackEntry struct {
	pos        shogi.Position
	staticEval int
	pv         PV
	inCheck    bool
}

const (
	nullMoveMinDepth  = 3
	razorMargin       = 300
	rfpMaxDepth       = 7
	rfpMarginPerPly   = 90
	lmpMaxDepth       = 8
	iidMinDepth       = 4
)

// iterativeDeepening drives one thread's search from depth 1 upward
// until the time manager or an external stop requests a halt, per
// spec §4.7/§4.9. Only the root thread (isRoot) reports progress.
func (s *Searcher) iterativeDeepening(t *Thread, rootPos *shogi.Position, maxDepth int, limits Limits, tm *TimeManager, isRoot bool) RootMove {
	t.keyHistory = append(t.keyHistory[:0], rootPos.Key())
	t.nodes = 0
	t.stack()[0].pos = *rootPos
	t.eval.Init(rootPos)

	var best RootMove
	alpha, beta := -scoreInf, scoreInf
	window := 25

	for depth := 1; depth <= maxDepth; depth++ {
		if s.stopped() {
			break
		}
		if isRoot && limits.Nodes > 0 && t.nodes >= limits.Nodes {
			break
		}

		var score int
		var pv PV
		if depth >= 5 {
			alpha = best.Score - window
			beta = best.Score + window
		} else {
			alpha, beta = -scoreInf, scoreInf
		}

		for {
			score, pv = s.search(t, depth, alpha, beta)
			if s.stopped() {
				break
			}
			if score <= alpha {
				alpha -= window
				window *= 2
			} else if score >= beta {
				beta += window
				window *= 2
			} else {
				break
			}
			alpha = shogi.Clamp(alpha, -scoreInf, scoreInf)
			beta = shogi.Clamp(beta, -scoreInf, scoreInf)
		}
		window = 25

		if s.stopped() && depth > 1 {
			break
		}

		best = RootMove{Move: pv.Best(), Score: score, PV: pv.ToSlice(), Nodes: t.nodes}
		tm.AddMoveNodes(best.Move, t.nodes)
		tm.OnIterationComplete(depth, best.Move)

		if isRoot && s.Progress != nil {
			mateIn := 0
			if score >= scoreWin {
				mateIn = scoreMate - score
			} else if score <= -scoreWin {
				mateIn = -(scoreMate + score)
			}
			s.Progress(SearchInfo{
				Depth:  depth,
				Score:  score,
				MateIn: mateIn,
				Nodes:  t.nodes,
				PV:     best.PV,
			})
		}

		if isRoot && !limits.Infinite && tm.StopSoft() {
			break
		}
		if score >= scoreWin || score <= -scoreWin {
			break
		}
	}
	return best
}

func (t *Thread) stack() *[maxPly]stackEntry {
	if t.stk == nil {
		t.stk = &[maxPly]stackEntry{}
	}
	return t.stk
}

// search is the root-level entry to the PVS tree for one (depth,
// alpha, beta) aspiration attempt.
func (s *Searcher) search(t *Thread, depth, alpha, beta int) (int, PV) {
	pos := &t.stack()[0].pos
	var pv PV
	score := s.alphaBeta(t, pos, 0, depth, alpha, beta, &pv, true)
	return score, pv
}

// alphaBeta implements PVS with the usual suite of pruning techniques
// from spec §4.7, grounded on the reference engine's `negamax`
// structure: TT-informed move ordering and cutoffs, reverse futility
// pruning, null-move pruning, late-move pruning/reductions, and
// quiescence search at the leaves.
func (s *Searcher) alphaBeta(t *Thread, pos *shogi.Position, ply, depth, alpha, beta int, pv *PV, isPV bool) int {
	pv.Clear()
	t.nodes++

	if s.stopped() {
		return 0
	}

	if depth <= 0 {
		return s.quiescence(t, pos, ply, 0, alpha, beta, pv)
	}

	inCheck := pos.IsInCheck()

	var list shogi.MoveList
	pos.GenerateLegalMoves(&list)
	if list.Size == 0 {
		if inCheck {
			return -scoreMate + ply
		}
		return 0 // stalemate is treated as a draw; shogi rules rarely hit this path
	}

	ttHit := s.tt.Probe(pos.Key(), ply)
	var ttMove shogi.Move
	if ttHit.Hit {
		ttMove = shogi.Move(ttHit.Move)
		if !isPV && ttHit.Depth >= depth {
			switch {
			case ttHit.Flag == BoundExact:
				return ttHit.Score
			case ttHit.Flag == BoundLower && ttHit.Score >= beta:
				return ttHit.Score
			case ttHit.Flag == BoundUpper && ttHit.Score <= alpha:
				return ttHit.Score
			}
		}
	}

	staticEval := t.evaluate(pos, ply)
	t.stack()[ply].staticEval = staticEval
	t.stack()[ply].inCheck = inCheck

	improving := ply >= 2 && !inCheck && staticEval > t.stack()[ply-2].staticEval

	// Reverse futility pruning: a large static-eval margin over beta at
	// shallow depth means the opponent would need an implausible swing
	// to get back into the window.
	if !isPV && !inCheck && depth <= rfpMaxDepth && staticEval-rfpMarginPerPly*depth >= beta && beta > -scoreWin {
		return staticEval
	}

	// Null-move pruning.
	if !isPV && !inCheck && depth >= nullMoveMinDepth && staticEval >= beta && hasNonPawnMaterial(pos) {
		r := 3 + depth/4
		childDepth := depth - 1 - r
		if childDepth < 0 {
			childDepth = 0
		}
		null := pos.ApplyNullMove()
		t.keyHistory = append(t.keyHistory, null.Key())
		t.eval.Push(pos, &null, shogi.MoveNone)
		var childPV PV
		score := -s.alphaBeta(t, &null, ply+1, childDepth, -beta, -beta+1, &childPV, false)
		t.eval.Pop()
		t.keyHistory = t.keyHistory[:len(t.keyHistory)-1]
		if s.stopped() {
			return 0
		}
		if score >= beta {
			if score >= scoreWin {
				score = beta
			}
			return score
		}
	}

	if depth >= iidMinDepth && ttMove == shogi.MoveNone && isPV {
		var iidPV PV
		s.alphaBeta(t, pos, ply, depth-2, alpha, beta, &iidPV, true)
		ttMove = iidPV.Best()
	}

	scored := t.orderMoves(pos, &list, ttMove, ply)

	bestScore := -scoreInf
	bestMove := shogi.MoveNone
	origAlpha := alpha
	movesSearched := 0

	for _, sm := range scored {
		m := sm.move
		if s.stopped() {
			break
		}

		isCapture := !m.IsDrop() && !pos.PieceOn(m.To()).IsNone()
		isQuiet := !isCapture

		// Late move pruning: skip quiet moves deep in a fully-ordered
		// list at shallow remaining depth, once we already have a move.
		if !isPV && !inCheck && isQuiet && depth <= lmpMaxDepth && movesSearched >= 4+depth*depth && bestScore > -scoreWin {
			continue
		}

		if !isPV && isCapture && depth <= 8 && !inCheck && !pos.SEE(m, -depth*50) {
			continue
		}

		child := pos.ApplyMove(m)
		t.keyHistory = append(t.keyHistory, child.Key())
		t.stack()[ply+1].pos = child
		t.eval.Push(pos, &child, m)

		childDepth := depth - 1
		reduction := 0
		if depth >= 3 && movesSearched >= 3 && isQuiet && !inCheck {
			reduction = lmrReduction(depth, movesSearched)
			if isPV {
				reduction--
			}
			if improving {
				reduction--
			}
			if reduction < 0 {
				reduction = 0
			}
			if reduction > childDepth-1 {
				reduction = childDepth - 1
			}
		}

		var childPV PV
		var score int
		if movesSearched == 0 {
			score = -s.alphaBeta(t, &child, ply+1, childDepth, -beta, -alpha, &childPV, isPV)
		} else {
			score = -s.alphaBeta(t, &child, ply+1, childDepth-reduction, -alpha-1, -alpha, &childPV, false)
			if score > alpha && (reduction > 0 || (isPV && score < beta)) {
				score = -s.alphaBeta(t, &child, ply+1, childDepth, -alpha-1, -alpha, &childPV, false)
			}
			if isPV && score > alpha && score < beta {
				score = -s.alphaBeta(t, &child, ply+1, childDepth, -beta, -alpha, &childPV, true)
			}
		}

		t.eval.Pop()
		t.keyHistory = t.keyHistory[:len(t.keyHistory)-1]
		movesSearched++

		if s.stopped() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			pv.Assign(m, &childPV)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if isQuiet {
				bonus := HistoryBonus(depth)
				t.history.UpdateNonCapture(pos.SideToMove(), m, bonus)
				t.history.AddKiller(ply, m)
				if ply >= 1 {
					t.history.UpdateCont(child.Key(), t.keyAt(len(t.keyHistory)-1), bonus)
				}
			} else if m.IsDrop() {
				t.history.UpdateDrop(m, HistoryBonus(depth))
			} else if !pos.PieceOn(m.To()).IsNone() {
				t.history.UpdateCapture(m, pos.PieceOn(m.To()).Type(), HistoryBonus(depth))
			}
			break
		}
	}

	flag := BoundUpper
	if bestScore >= beta {
		flag = BoundLower
	} else if bestScore > origAlpha {
		flag = BoundExact
	}
	if !s.stopped() {
		var moveBits uint16
		if bestMove != shogi.MoveNone {
			moveBits = uint16(bestMove)
		}
		s.tt.Store(pos.Key(), bestScore, staticEval, moveBits, depth, ply, flag, isPV)

		// Correction history only learns from scores that weren't driven
		// by a tactical capture cutoff, per correction.cpp's guard.
		if !inCheck && !isCapture(pos, bestMove) {
			complexity := absInt(bestScore - staticEval)
			bonus := Bonus(depth, bestScore, staticEval, complexity)
			t.corr.Update(pos, t.keyHistory, bonus)
		}
	}

	return bestScore
}

func isCapture(pos *shogi.Position, m shogi.Move) bool {
	return m != shogi.MoveNone && !m.IsDrop() && !pos.PieceOn(m.To()).IsNone()
}

// quiescence resolves tactical sequences (captures only, plus
// evasions when in check, plus non-capture checks at qdepth 0) before
// a static evaluation is trusted, per spec §4.7. qdepth counts plies
// since quiescence was entered from the main search, not from the
// root of the game tree.
func (s *Searcher) quiescence(t *Thread, pos *shogi.Position, ply, qdepth, alpha, beta int, pv *PV) int {
	pv.Clear()
	t.nodes++

	inCheck := pos.IsInCheck()
	var standPat int
	if !inCheck {
		standPat = t.evaluate(pos, ply)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	} else {
		standPat = -scoreMate + ply
	}

	var list shogi.MoveList
	if inCheck {
		pos.GenerateLegalMoves(&list)
		if list.Size == 0 {
			return -scoreMate + ply
		}
	} else {
		pos.GenerateCaptures(&list)
		if qdepth == 0 {
			appendCheckingMoves(pos, &list)
		}
	}

	bestScore := standPat
	scored := t.orderMoves(pos, &list, shogi.MoveNone, ply)

	for _, sm := range scored {
		m := sm.move
		if !inCheck && !m.IsDrop() && !pos.PieceOn(m.To()).IsNone() && !pos.SEE(m, 0) {
			continue
		}
		child := pos.ApplyMove(m)
		t.keyHistory = append(t.keyHistory, child.Key())
		t.eval.Push(pos, &child, m)
		var childPV PV
		score := -s.quiescence(t, &child, ply+1, qdepth+1, -beta, -alpha, &childPV)
		t.eval.Pop()
		t.keyHistory = t.keyHistory[:len(t.keyHistory)-1]

		if score > bestScore {
			bestScore = score
			pv.Assign(m, &childPV)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return bestScore
}

// appendCheckingMoves adds quiet (non-capture) moves that give check
// to list, for quiescence's qdepth-0 non-capture-check extension.
func appendCheckingMoves(pos *shogi.Position, list *shogi.MoveList) {
	var quiets shogi.MoveList
	pos.GenerateNonCaptures(&quiets)
	for i := 0; i < quiets.Size && list.Size < shogi.MaxMoves; i++ {
		m := quiets.Moves[i]
		child := pos.ApplyMove(m)
		if child.IsInCheck() {
			list.Moves[list.Size] = m
			list.Size++
		}
	}
}

func (t *Thread) evaluate(pos *shogi.Position, ply int) int {
	raw := t.eval.Evaluate(pos)
	return raw + t.corr.Correction(pos, t.keyHistory)
}

func lmrReduction(depth, moveIndex int) int {
	r := 1
	if depth > 6 && moveIndex > 8 {
		r = 2
	}
	if depth > 12 && moveIndex > 16 {
		r = 3
	}
	return r
}

func hasNonPawnMaterial(pos *shogi.Position) bool {
	stm := pos.SideToMove()
	for pt := shogi.Lance; pt <= shogi.Rook; pt++ {
		if !pos.PieceBB(pt, stm).Empty() {
			return true
		}
	}
	return false
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

