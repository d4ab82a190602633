package engine

import (
	"context"
	"math/bits"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sync/semaphore"
)

// Bound is the kind of score stored in a transposition table entry.
type Bound uint8

const (
	BoundNone Bound = iota
	BoundUpper
	BoundLower
	BoundExact
)

const (
	scoreMate  = 30000
	scoreWin   = scoreMate - 1000
	scoreInf   = scoreMate + 1
	scoreNone  = scoreMate + 2
)

// entry is one 10-byte transposition table slot.
type entry struct {
	key16       uint16
	move16      uint16 // shogi.Move
	score16     int16
	staticEval  int16
	depth8      int8
	agePvFlag8  uint8 // bits 0-1 flag, bit 2 pv, bits 3-7 age
}

const ageBits = 5
const ageMask = (1 << ageBits) - 1

func packAgePvFlag(age uint8, pv bool, flag Bound) uint8 {
	v := uint8(flag) & 0x3
	if pv {
		v |= 1 << 2
	}
	v |= (age & ageMask) << 3
	return v
}

func (e entry) flag() Bound { return Bound(e.agePvFlag8 & 0x3) }
func (e entry) pv() bool    { return e.agePvFlag8&(1<<2) != 0 }
func (e entry) age() uint8  { return (e.agePvFlag8 >> 3) & ageMask }

// cluster groups a small number of entries sharing the same index, so
// a probe is a short linear scan rather than a single-slot lookup.
const clusterSize = 3

type cluster struct {
	entries [clusterSize]entry
}

// Table is the shared transposition table. Every operation is
// intentionally unsynchronized: concurrent workers may race on a
// read/write to the same cluster, but the stored 16-bit key check
// catches the mismatch and a torn entry is simply treated as a probe
// miss, per the threading model's "benign torn reads" contract.
type Table struct {
	clusters []cluster
	age      uint8
}

// Resize allocates (or reallocates) the table for the given megabyte
// budget. Allocation is deferred to this explicit call, mirroring the
// reference engine's finalize(threadCount) step, rather than the
// constructor, so that a `setoption Hash` can change size freely
// before the first search.
func (t *Table) Resize(mib int) {
	bytes := mib * 1024 * 1024
	count := bytes / int(unsafe.Sizeof(cluster{}))
	if count < 1 {
		count = 1
	}
	count = 1 << (bits.Len(uint(count)) - 1) // round down to a power of two
	if count == 0 {
		count = 1
	}
	t.clusters = make([]cluster, count)
}

// Clear resets every entry to empty and resets the age counter,
// fanning the memset out across chunks the way ttable.cpp's clear()
// splits the job across std::thread workers. A semaphore bounds how
// many chunk-clear goroutines run at once, so a large table doesn't
// spin up one goroutine per chunk on a modest core count.
func (t *Table) Clear() {
	t.age = 0
	n := len(t.clusters)
	if n == 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	chunk := (n + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	ctx := context.Background()
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			// context.Background() never cancels; unreachable in practice.
			for i := start; i < end; i++ {
				t.clusters[i] = cluster{}
			}
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			defer sem.Release(1)
			for i := start; i < end; i++ {
				t.clusters[i] = cluster{}
			}
		}(start, end)
	}
	wg.Wait()
}

// NewSearch bumps the age counter before a new root search, per spec's
// age cycle (5-bit counter, mod 32).
func (t *Table) NewSearch() {
	t.age = (t.age + 1) & ageMask
}

func (t *Table) index(key uint64) uint64 {
	if len(t.clusters) == 0 {
		return 0
	}
	hi, _ := bits.Mul64(key, uint64(len(t.clusters)))
	return hi
}

// ProbeResult is what Probe returns on a hit.
type ProbeResult struct {
	Score      int
	StaticEval int
	Move       uint16
	Depth      int
	Flag       Bound
	PV         bool
	Hit        bool
}

// scoreToTT/scoreFromTT adjust mate scores to be ply-independent in
// storage and ply-relative when read back (spec §4.3/§4.7).
func scoreToTT(score, ply int) int {
	if score >= scoreWin {
		return score + ply
	}
	if score <= -scoreWin {
		return score - ply
	}
	return score
}

func scoreFromTT(score, ply int) int {
	if score >= scoreWin {
		return score - ply
	}
	if score <= -scoreWin {
		return score + ply
	}
	return score
}

// Probe looks up key, translating any stored mate score back to a
// score relative to the given ply.
func (t *Table) Probe(key uint64, ply int) ProbeResult {
	if len(t.clusters) == 0 {
		return ProbeResult{}
	}
	cl := &t.clusters[t.index(key)]
	key16 := uint16(key)
	for i := range cl.entries {
		e := &cl.entries[i]
		if e.flag() != BoundNone && e.key16 == key16 {
			return ProbeResult{
				Score:      scoreFromTT(int(e.score16), ply),
				StaticEval: int(e.staticEval),
				Move:       e.move16,
				Depth:      int(e.depth8),
				Flag:       e.flag(),
				PV:         e.pv(),
				Hit:        true,
			}
		}
	}
	return ProbeResult{}
}

// Store writes (or updates) the entry for key, following the
// replacement policy of spec §4.3: prefer an empty or key-matching
// slot; otherwise evict by entryValue = depth - relativeAge*2. A
// non-exact write for a key already stored at the current age is
// dropped when the stored entry is at least 4 plies deeper; any other
// write refreshes age/pv/flag with the score, and preserves the
// previous move when the incoming move is none and the key matches.
func (t *Table) Store(key uint64, score, staticEval int, move uint16, depth int, ply int, flag Bound, pv bool) {
	if len(t.clusters) == 0 {
		return
	}
	cl := &t.clusters[t.index(key)]
	key16 := uint16(key)

	var victim *entry
	victimValue := 1 << 30
	for i := range cl.entries {
		e := &cl.entries[i]
		if e.flag() == BoundNone || e.key16 == key16 {
			victim = e
			break
		}
		relAge := int((ageMask + 1 + t.age - e.age())) & ageMask
		value := int(e.depth8) - relAge*2
		if value < victimValue {
			victimValue = value
			victim = e
		}
	}
	if victim == nil {
		victim = &cl.entries[0]
	}

	sameKey := victim.key16 == key16 && victim.flag() != BoundNone
	replace := victim.flag() == BoundNone || flag == BoundExact || !sameKey ||
		victim.age() != t.age || depth+4 > int(victim.depth8)
	if !replace {
		return
	}

	if move == 0 && sameKey {
		move = victim.move16
	}

	victim.key16 = key16
	victim.move16 = move
	victim.score16 = int16(scoreToTT(score, ply))
	victim.staticEval = int16(staticEval)
	victim.depth8 = int8(depth)
	victim.agePvFlag8 = packAgePvFlag(t.age, pv, flag)
}

// FullPermille samples the first 1000 entries and reports how many
// are occupied at the current search's age, for USI's `hashfull`.
func (t *Table) FullPermille() int {
	if len(t.clusters) == 0 {
		return 0
	}
	sampled := 0
	full := 0
	for i := 0; i < len(t.clusters) && sampled < 1000; i++ {
		for j := range t.clusters[i].entries {
			e := &t.clusters[i].entries[j]
			sampled++
			if e.flag() != BoundNone && e.age() == t.age {
				full++
			}
			if sampled >= 1000 {
				break
			}
		}
	}
	if sampled == 0 {
		return 0
	}
	return full * 1000 / sampled
}
