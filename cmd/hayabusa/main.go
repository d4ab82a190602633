// Command hayabusa is a USI shogi engine. With no arguments it runs
// the USI protocol loop over stdin/stdout; "bench" and "perft"
// subcommands exist for reproducible node-count and move-generator
// diagnostics, grounded on the reference engine's equivalent
// command-line tooling.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/toshirosawada/hayabusa/engine"
	"github.com/toshirosawada/hayabusa/eval/nnue"
	"github.com/toshirosawada/hayabusa/shogi"
	"github.com/toshirosawada/hayabusa/usi"
)

const (
	engineName   = "Hayabusa"
	engineAuthor = "hayabusa contributors"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "bench":
			runBenchCommand(os.Args[2:])
			return
		case "perft":
			runPerftCommand(os.Args[2:])
			return
		}
	}

	runUsi()
}

func newSearcher() *engine.Searcher {
	weights := nnue.LoadDefaultWeights()
	return engine.NewSearcher(func() engine.Evaluator {
		return nnue.NewAccumulator(weights)
	})
}

func runUsi() {
	searcher := newSearcher()

	hash := searcher.Options.HashMiB
	threads := searcher.Options.Threads
	moveOverheadMs := int(searcher.Options.MoveOverhead.Milliseconds())

	options := []usi.Option{
		&usi.IntOption{OptName: "USI_Hash", Min: 1, Max: 1048576, Value: &hash},
		&usi.IntOption{OptName: "Threads", Min: 1, Max: 512, Value: &threads},
		&usi.IntOption{OptName: "MoveOverhead", Min: 0, Max: 5000, Value: &moveOverheadMs},
	}

	applyOptions := func() {
		o := searcher.GetOptions()
		o.SetHash(hash)
		o.SetThreads(threads)
		o.SetMoveOverhead(moveOverheadMs)
		searcher.SetOptions(o)
	}

	wrapped := make([]usi.Option, len(options))
	for i, opt := range options {
		opt := opt
		wrapped[i] = &applyingOption{Option: opt, apply: applyOptions}
	}

	proto := usi.New(engineName, engineAuthor, searcherEngine{searcher}, wrapped, os.Stdout)
	proto.Run(os.Stdin)
}

// applyingOption forwards Set to the wrapped option, then runs a
// side-effecting callback so Searcher.SetOptions only fires once the
// backing variable has its new value.
type applyingOption struct {
	usi.Option
	apply func()
}

func (o *applyingOption) Set(s string) error {
	if err := o.Option.Set(s); err != nil {
		return err
	}
	o.apply()
	return nil
}

// searcherEngine adapts *engine.Searcher to usi.Engine.
type searcherEngine struct {
	*engine.Searcher
}

func runBenchCommand(args []string) {
	depth := 13
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}
	runBench(newSearcher(), depth)
}

func runPerftCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("usage: hayabusa perft <depth> [sfen]")
		return
	}
	depth, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("invalid depth:", err)
		return
	}

	var pos *shogi.Position
	if len(args) > 1 {
		pos, err = shogi.ParseSFEN(args[1])
		if err != nil {
			fmt.Println("invalid sfen:", err)
			return
		}
	} else {
		pos = shogi.NewStartPosition()
	}

	start := time.Now()
	split := shogi.SplitPerft(pos, depth)
	var total uint64
	for _, entry := range split {
		fmt.Printf("%s: %d\n", entry.Move, entry.Nodes)
		total += entry.Nodes
	}
	elapsed := time.Since(start)
	fmt.Printf("\n%d nodes in %s\n", total, elapsed)
}
