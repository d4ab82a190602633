package shogi

import "golang.org/x/exp/constraints"

// Clamp restricts v to [lo, hi], used by search, history, correction
// history and NNUE evaluation wherever a bounded score needs clipping, following
// hailam-chessplay's use of x/exp/constraints for generic numeric
// helpers rather than hand-writing one overload per type.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
