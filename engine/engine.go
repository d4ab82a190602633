package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/toshirosawada/hayabusa/shogi"
)

// Evaluator is the contract search relies on for position
// evaluation; eval/nnue.Accumulator implements it. Kept as an
// interface so the search package never depends on the numeric
// inference kernel directly, per spec §9's cyclic-interaction design
// note.
type Evaluator interface {
	// Init rebuilds the accumulator stack from scratch for pos,
	// discarding any incremental history. Called once per search root.
	Init(pos *shogi.Position)
	// Evaluate returns the side-to-move-relative score of pos's
	// current top-of-stack accumulator state.
	Evaluate(pos *shogi.Position) int
	// Push/Pop advance or unwind the accumulator stack by one ply, in
	// lockstep with the Position stack.
	Push(prev, cur *shogi.Position, move shogi.Move)
	Pop()
}

// Options holds the USI-configurable engine parameters of spec §6.
type Options struct {
	HashMiB      int
	Threads      int
	MoveOverhead time.Duration
}

func DefaultOptions() Options {
	return Options{HashMiB: 16, Threads: 1, MoveOverhead: 300 * time.Millisecond}
}

// SetHash accepts [1, 1048576] MiB, per spec §6; an out-of-range
// value is rejected (returns false) and leaves HashMiB unchanged.
func (o *Options) SetHash(mib int) bool {
	if mib < 1 || mib > 1048576 {
		return false
	}
	o.HashMiB = mib
	return true
}

// SetThreads accepts [1, 512]; an out-of-range value is rejected.
func (o *Options) SetThreads(n int) bool {
	if n < 1 || n > 512 {
		return false
	}
	o.Threads = n
	return true
}

// SetMoveOverhead accepts [0, 5000] ms; an out-of-range value is
// rejected.
func (o *Options) SetMoveOverhead(ms int) bool {
	if ms < 0 || ms > 5000 {
		return false
	}
	o.MoveOverhead = time.Duration(ms) * time.Millisecond
	return true
}

// Thread is one worker's exclusively-owned state: its own position
// stack (the StateStack of spec §3), heuristic tables, accumulator
// and node counter. Nothing here is shared with other threads.
type Thread struct {
	idx     int
	history History
	corr    CorrectionHistory
	nodes   uint64

	keyHistory []uint64 // key at each ply from the search root backwards
	eval       Evaluator

	stk *[maxPly]stackEntry
}

func (t *Thread) keyAt(ply int) uint64 {
	if ply < 0 || ply >= len(t.keyHistory) {
		return 0
	}
	return t.keyHistory[ply]
}

func newThread(idx int, eval Evaluator) *Thread {
	return &Thread{idx: idx, eval: eval, keyHistory: make([]uint64, 0, maxPly)}
}

func (t *Thread) clear() {
	t.history.Clear()
	t.corr.Clear()
	t.nodes = 0
	t.keyHistory = t.keyHistory[:0]
}

// Searcher owns the shared transposition table and a fixed-size
// thread pool, per spec §4.9.
type Searcher struct {
	Options Options
	tt      Table

	evalBuilder func() Evaluator
	threads     []*Thread

	stopping int32 // atomic; sequentially consistent per spec §5

	Logger zerolog.Logger

	Progress func(info SearchInfo)

	lastNodes uint64
}

// LastNodes reports the root thread's node count from the most
// recently completed Search call, for bench/USI hashfull-style
// reporting.
func (s *Searcher) LastNodes() uint64 { return s.lastNodes }

// SearchInfo is what the USI front-end renders as an `info` line.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int
	MateIn   int // 0 if not a mate score
	Nodes    uint64
	NPS      uint64
	Time     time.Duration
	PV       []shogi.Move
	HashFull int
}

func NewSearcher(evalBuilder func() Evaluator) *Searcher {
	s := &Searcher{Options: DefaultOptions(), evalBuilder: evalBuilder}
	s.prepare()
	return s
}

// prepare (re)allocates the TT and thread pool for the current
// options. It runs at construction (NewSearcher), on SetOptions, and
// from Prepare.
func (s *Searcher) prepare() {
	s.tt.Resize(s.Options.HashMiB)
	s.threads = make([]*Thread, s.Options.Threads)
	for i := range s.threads {
		s.threads[i] = newThread(i, s.evalBuilder())
	}
}

// Prepare (re)allocates the TT and thread pool for the current
// options; exposed for the USI `isready` handler, matching the
// reference protocol's eager-allocation-on-isready contract.
func (s *Searcher) Prepare() {
	s.prepare()
}

// SetOptions replaces the engine's tunables and reallocates the TT
// and thread pool to match.
func (s *Searcher) SetOptions(o Options) {
	s.Options = o
	s.prepare()
}

func (s *Searcher) GetOptions() Options { return s.Options }

// SetProgress installs the callback used to report `info` lines
// during a search.
func (s *Searcher) SetProgress(f func(SearchInfo)) { s.Progress = f }

// Clear resets the TT and every thread's heuristic tables, called on
// USI `usinewgame`. No mutable global state survives this call.
func (s *Searcher) Clear() {
	s.tt.Clear()
	for _, t := range s.threads {
		t.clear()
	}
}

func (s *Searcher) stopped() bool {
	return atomic.LoadInt32(&s.stopping) != 0
}

func (s *Searcher) requestStop() {
	atomic.StoreInt32(&s.stopping, 1)
}

// Stop requests cancellation of the current search; USI `stop`.
func (s *Searcher) Stop() { s.requestStop() }

// Search runs iterative deepening across the configured thread pool
// and returns the best move found, per spec §4.7/§4.9. The root
// worker (thread 0) is the one whose Progress callbacks and final
// result are used; the remaining workers exist purely to diversify
// the shared TT (lazy SMP).
func (s *Searcher) Search(ctx context.Context, pos *shogi.Position, limits Limits) shogi.Move {
	atomic.StoreInt32(&s.stopping, 0)
	s.tt.NewSearch()

	tm := NewTimeManager(pos.SideToMove(), limits, s.Options.MoveOverhead)
	defer tm.Stop()

	go func() {
		select {
		case <-ctx.Done():
			s.requestStop()
		case <-tm.Done():
			s.requestStop()
		}
	}()

	maxDepth := limits.Depth
	if maxDepth <= 0 || maxDepth > maxPly-1 {
		maxDepth = maxPly - 1
	}

	var g errgroup.Group
	results := make([]RootMove, len(s.threads))
	for i, th := range s.threads {
		i, th := i, th
		g.Go(func() error {
			best := s.iterativeDeepening(th, pos, maxDepth, limits, tm, i == 0)
			results[i] = best
			return nil
		})
	}
	_ = g.Wait()

	s.lastNodes = s.threads[0].nodes

	best := results[0]
	for _, r := range results[1:] {
		if r.Move != shogi.MoveNone && r.Score > best.Score && len(r.PV) >= len(best.PV) {
			// this body is empty: a helper thread's result never
			// replaces the root's, so thread 0's result (which emitted
			// the `info` lines) is always the one returned.
		}
	}
	if best.Move == shogi.MoveNone {
		var list shogi.MoveList
		pos.GenerateLegalMoves(&list)
		if list.Size > 0 {
			best.Move = list.Moves[0]
		}
	}
	return best.Move
}
