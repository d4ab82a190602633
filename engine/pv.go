package engine

import "github.com/toshirosawada/hayabusa/shogi"

// PV is a fixed-capacity principal-variation buffer, assigned from a
// child node's PV by value (no allocation per node).
type PV struct {
	items [maxPly]shogi.Move
	size  int
}

func (pv *PV) Clear() { pv.size = 0 }

// Assign sets this PV to [m] followed by child's moves.
func (pv *PV) Assign(m shogi.Move, child *PV) {
	pv.items[0] = m
	n := copy(pv.items[1:], child.items[:child.size])
	pv.size = n + 1
}

func (pv *PV) ToSlice() []shogi.Move {
	out := make([]shogi.Move, pv.size)
	copy(out, pv.items[:pv.size])
	return out
}

func (pv *PV) Best() shogi.Move {
	if pv.size == 0 {
		return shogi.MoveNone
	}
	return pv.items[0]
}

// RootMove is one candidate at the root, re-scored every iteration.
type RootMove struct {
	Move  shogi.Move
	Score int
	PV    []shogi.Move
	Nodes uint64
}
