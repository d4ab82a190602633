package engine

import (
	"context"
	"testing"
	"time"

	"github.com/toshirosawada/hayabusa/eval/nnue"
	"github.com/toshirosawada/hayabusa/shogi"
)

func newTestSearcher() *Searcher {
	weights := nnue.NewZeroWeights()
	return NewSearcher(func() Evaluator {
		return nnue.NewAccumulator(weights)
	})
}

// TestSearchReturnsLegalMoveFromStartPosition is a smoke test that
// the search loop terminates and proposes a legal root move
// within a small fixed-depth budget, covering scenario E6's basic
// "search completes" contract without asserting any particular move.
func TestSearchReturnsLegalMoveFromStartPosition(t *testing.T) {
	s := newTestSearcher()
	pos := shogi.NewStartPosition()

	move := s.Search(context.Background(), pos, Limits{Depth: 3})
	if move == shogi.MoveNone {
		t.Fatal("search returned no move")
	}
	if !pos.IsLegal(move) {
		t.Fatalf("search returned illegal move %s", move)
	}
}

// TestSearchFindsMateInOne covers scenario E4: from a position one
// drop away from checkmate, depth-2 search should report a mate
// score.
func TestSearchFindsMateInOne(t *testing.T) {
	// Black to move, gold in hand, white king boxed into the corner
	// with no escape squares and the mating drop undefended.
	pos, err := shogi.ParseSFEN("8k/9/8G/9/9/9/9/9/K8 b G 1")
	if err != nil {
		t.Fatal(err)
	}

	s := newTestSearcher()
	var last SearchInfo
	s.SetProgress(func(info SearchInfo) { last = info })
	move := s.Search(context.Background(), pos, Limits{Depth: 2})
	if move == shogi.MoveNone {
		t.Fatal("search returned no move for a mate-in-1 position")
	}
	if last.Score != scoreMate-1 {
		t.Fatalf("reported score %d, want mate score %d", last.Score, scoreMate-1)
	}
	child := pos.ApplyMove(move)
	var replies shogi.MoveList
	child.GenerateLegalMoves(&replies)
	if child.Checkers().Empty() || replies.Size != 0 {
		t.Fatalf("move %s does not mate", move)
	}
}

func TestTimeManagerStopsAtMoveTime(t *testing.T) {
	tm := NewTimeManager(shogi.Black, Limits{MoveTime: 20 * time.Millisecond}, 0)
	defer tm.Stop()
	select {
	case <-tm.Done():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("time manager did not stop within movetime + margin")
	}
}
