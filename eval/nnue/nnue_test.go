package nnue

import (
	"testing"

	"github.com/toshirosawada/hayabusa/shogi"
)

// TestPushPopRestoresEvaluation covers testable property 9: pushing a
// move then popping it back must restore the identical evaluation,
// since Pop simply rewinds the accumulator stack rather than
// recomputing anything.
func TestPushPopRestoresEvaluation(t *testing.T) {
	weights := NewZeroWeights()
	for i := range weights.HiddenWeights {
		weights.HiddenWeights[i] = float32(i%7) - 3
	}
	for i := range weights.OutputWeights {
		weights.OutputWeights[i] = float32(i%5) - 2
	}

	acc := NewAccumulator(weights)
	pos := shogi.NewStartPosition()
	acc.Init(pos)
	before := acc.Evaluate(pos)

	var list shogi.MoveList
	pos.GenerateLegalMoves(&list)
	if list.Size == 0 {
		t.Fatal("start position has no legal moves")
	}
	m := list.Moves[0]
	next := pos.ApplyMove(m)

	acc.Push(pos, &next, m)

	want := NewAccumulator(weights)
	want.Init(&next)
	if got, wantEval := acc.Evaluate(&next), want.Evaluate(&next); got != wantEval {
		t.Fatalf("incremental push does not match a from-scratch refresh: got=%d want=%d", got, wantEval)
	}

	acc.Pop()

	after := acc.Evaluate(pos)
	if before != after {
		t.Fatalf("push/pop did not restore evaluation: before=%d after=%d", before, after)
	}
}

func TestZeroWeightsProduceFiniteEvaluation(t *testing.T) {
	acc := NewAccumulator(NewZeroWeights())
	pos := shogi.NewStartPosition()
	acc.Init(pos)
	if got := acc.Evaluate(pos); got != 0 {
		t.Fatalf("zero-weight network should evaluate to 0, got %d", got)
	}
}
