package engine

import (
	"context"
	"time"

	"github.com/toshirosawada/hayabusa/shogi"
)

// Limits mirrors the USI `go` command's time-control fields.
type Limits struct {
	Infinite  bool
	Depth     int
	Nodes     uint64
	MoveTime  time.Duration
	Remaining [2]time.Duration
	Increment [2]time.Duration
	Byoyomi   time.Duration
}

const timeCheckInterval = 2048

// TimeManager derives soft/hard wall-clock budgets from Limits, per
// spec §4.8, and rescales the soft budget after depth 6 based on how
// concentrated node counts were on the best move.
type TimeManager struct {
	start        time.Time
	optTime      time.Duration
	maxTime      time.Duration
	scale        float64
	moveOverhead time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	dropNodes    [shogi.PieceTypeCount][shogi.SquareCount]uint64
	nonDropNodes [2][shogi.SquareCount][shogi.SquareCount]uint64
	totalNodes   uint64
}

// NewTimeManager builds a manager for the side to move, given the
// limits reported by `go` and the configured move overhead.
func NewTimeManager(stm shogi.Color, limits Limits, moveOverhead time.Duration) *TimeManager {
	tm := &TimeManager{start: time.Now(), scale: 1, moveOverhead: moveOverhead}

	if limits.MoveTime > 0 {
		tm.optTime = limits.MoveTime
		tm.maxTime = limits.MoveTime
	} else if limits.Remaining[stm] > 0 || limits.Byoyomi > 0 {
		remaining := limits.Remaining[stm] - moveOverhead
		if remaining < 0 {
			remaining = 0
		}
		extra := limits.Byoyomi - moveOverhead
		if extra < 0 {
			extra = 0
		}
		inc := limits.Increment[stm]
		base := remaining/20 + inc/2
		if base > remaining {
			base = remaining
		}
		base += extra
		tm.optTime = time.Duration(float64(base) * 0.6)
		tm.maxTime = time.Duration(float64(remaining)*0.6) + extra
		if tm.optTime > tm.maxTime {
			tm.optTime = tm.maxTime
		}
	} else {
		tm.maxTime = 1 << 62 // effectively unbounded; depth/node limiters apply instead
		tm.optTime = tm.maxTime
	}

	if tm.maxTime > 0 && tm.maxTime < 1<<61 {
		tm.ctx, tm.cancel = context.WithTimeout(context.Background(), tm.maxTime)
	} else {
		tm.ctx, tm.cancel = context.WithCancel(context.Background())
	}
	return tm
}

func (tm *TimeManager) Done() <-chan struct{} { return tm.ctx.Done() }
func (tm *TimeManager) Stop()                 { tm.cancel() }

// AddMoveNodes adds nodes to move m's tally and to the running total,
// for the post-depth-6 rescale. The search calls it once per completed
// iteration with that iteration's best move and the thread's node
// count so far, so the tallies are not per-root-move subtree counts.
func (tm *TimeManager) AddMoveNodes(m shogi.Move, nodes uint64) {
	if m.IsDrop() {
		tm.dropNodes[m.DropPiece()][m.To()] += nodes
	} else {
		tm.nonDropNodes[boolIdx(m.IsPromotion())][m.From()][m.To()] += nodes
	}
	tm.totalNodes += nodes
}

// OnIterationComplete rescales the soft budget past depth 5, spending
// more time when the best move did not dominate the node count.
func (tm *TimeManager) OnIterationComplete(depth int, best shogi.Move) {
	tm.scale = 1
	if depth <= 5 || tm.totalNodes == 0 {
		return
	}
	var bestNodes uint64
	if best.IsDrop() {
		bestNodes = tm.dropNodes[best.DropPiece()][best.To()]
	} else {
		bestNodes = tm.nonDropNodes[boolIdx(best.IsPromotion())][best.From()][best.To()]
	}
	frac := float64(bestNodes) / float64(tm.totalNodes)
	tm.scale = 2.2 - frac*1.6
}

// StopSoft reports whether the engine should stop after the last
// completed iteration.
func (tm *TimeManager) StopSoft() bool {
	return time.Since(tm.start) >= time.Duration(float64(tm.optTime)*tm.scale)
}

// StopHard reports whether the hard limit is reached, checking only
// when nodes is a non-zero multiple of timeCheckInterval. The search
// does not call it; it stops through Done() instead.
func (tm *TimeManager) StopHard(nodes uint64) bool {
	if nodes == 0 || nodes%timeCheckInterval != 0 {
		return false
	}
	select {
	case <-tm.ctx.Done():
		return true
	default:
		return time.Since(tm.start) >= tm.maxTime
	}
}
