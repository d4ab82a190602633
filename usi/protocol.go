// Package usi implements the Universal Shogi Interface text protocol
// that front-ends (GUIs, tournament managers) use to drive the
// engine, grounded on the reference engine's pkg/uci/protocol.go
// command loop, adapted from UCI's chess vocabulary to USI's.
package usi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/toshirosawada/hayabusa/engine"
	"github.com/toshirosawada/hayabusa/shogi"
)

// Engine is the contract the protocol drives; *engine.Searcher
// satisfies it.
type Engine interface {
	Prepare()
	Clear()
	Stop()
	Search(ctx context.Context, pos *shogi.Position, limits engine.Limits) shogi.Move
	SetProgress(func(engine.SearchInfo))
	SetOptions(engine.Options)
	GetOptions() engine.Options
}

// Protocol owns the position stack and option set and translates
// between USI text commands and Engine calls.
type Protocol struct {
	name    string
	author  string
	engine  Engine
	options []Option

	positions []*shogi.Position
	thinking  bool
	cancel    context.CancelFunc

	out io.Writer
}

func New(name, author string, eng Engine, options []Option, out io.Writer) *Protocol {
	return &Protocol{
		name:      name,
		author:    author,
		engine:    eng,
		options:   options,
		positions: []*shogi.Position{shogi.NewStartPosition()},
		out:       out,
	}
}

// Run reads commands from r until "quit" or EOF, per spec §6's
// protocol loop.
func (p *Protocol) Run(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" {
			if p.thinking {
				p.cancel()
			}
			return
		}
		if line == "" {
			continue
		}
		if err := p.handle(line); err != nil {
			fmt.Fprintf(p.out, "info string error %v\n", err)
		}
	}
}

func (p *Protocol) handle(line string) error {
	fields := strings.Fields(line)
	command := fields[0]
	args := fields[1:]

	if p.thinking {
		switch command {
		case "stop":
			p.cancel()
			return nil
		case "gameover":
			return nil
		default:
			return fmt.Errorf("usi: %q received while searching", command)
		}
	}

	switch command {
	case "usi":
		return p.usiCommand()
	case "isready":
		return p.isReadyCommand()
	case "setoption":
		return p.setOptionCommand(args)
	case "usinewgame":
		return p.newGameCommand()
	case "position":
		return p.positionCommand(args)
	case "go":
		return p.goCommand(args)
	case "gameover":
		return nil
	default:
		return fmt.Errorf("usi: unknown command %q", command)
	}
}

func (p *Protocol) usiCommand() error {
	fmt.Fprintf(p.out, "id name %s\n", p.name)
	fmt.Fprintf(p.out, "id author %s\n", p.author)
	for _, opt := range p.options {
		fmt.Fprintln(p.out, opt.UsiString())
	}
	fmt.Fprintln(p.out, "usiok")
	return nil
}

func (p *Protocol) isReadyCommand() error {
	p.engine.Prepare()
	fmt.Fprintln(p.out, "readyok")
	return nil
}

func (p *Protocol) setOptionCommand(args []string) error {
	nameIdx := indexOf(args, "name")
	valueIdx := indexOf(args, "value")
	if nameIdx == -1 {
		return fmt.Errorf("usi: setoption missing name")
	}
	var name string
	if valueIdx == -1 {
		name = strings.Join(args[nameIdx+1:], " ")
	} else {
		name = strings.Join(args[nameIdx+1:valueIdx], " ")
	}
	var value string
	if valueIdx != -1 {
		value = strings.Join(args[valueIdx+1:], " ")
	}
	for _, opt := range p.options {
		if strings.EqualFold(opt.Name(), name) {
			return opt.Set(value)
		}
	}
	return fmt.Errorf("usi: unknown option %q", name)
}

func (p *Protocol) newGameCommand() error {
	p.engine.Clear()
	p.positions = []*shogi.Position{shogi.NewStartPosition()}
	return nil
}

func (p *Protocol) positionCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usi: position missing arguments")
	}
	movesIdx := indexOf(args, "moves")

	var root *shogi.Position
	switch args[0] {
	case "startpos":
		root = shogi.NewStartPosition()
	case "sfen":
		var sfenFields []string
		if movesIdx == -1 {
			sfenFields = args[1:]
		} else {
			sfenFields = args[1:movesIdx]
		}
		parsed, err := shogi.ParseSFEN(strings.Join(sfenFields, " "))
		if err != nil {
			return err
		}
		root = parsed
	default:
		return fmt.Errorf("usi: unknown position token %q", args[0])
	}

	positions := []*shogi.Position{root}
	if movesIdx >= 0 {
		for _, token := range args[movesIdx+1:] {
			cur := positions[len(positions)-1]
			var list shogi.MoveList
			cur.GenerateLegalMoves(&list)
			m := findMove(&list, token)
			if m == shogi.MoveNone {
				return fmt.Errorf("usi: illegal or unparseable move %q", token)
			}
			next := cur.ApplyMove(m)
			positions = append(positions, &next)
		}
	}
	p.positions = positions
	return nil
}

func findMove(list *shogi.MoveList, usiText string) shogi.Move {
	for i := 0; i < list.Size; i++ {
		if list.Moves[i].String() == usiText {
			return list.Moves[i]
		}
	}
	return shogi.MoveNone
}

func (p *Protocol) goCommand(args []string) error {
	limits := parseLimits(args)
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.thinking = true

	root := p.positions[len(p.positions)-1]
	p.engine.SetProgress(func(info engine.SearchInfo) {
		fmt.Fprintln(p.out, formatInfo(info))
	})

	go func() {
		best := p.engine.Search(ctx, root, limits)
		fmt.Fprintf(p.out, "bestmove %s\n", moveToUsi(best))
		cancel()
		p.thinking = false
	}()
	return nil
}

func moveToUsi(m shogi.Move) string {
	if m == shogi.MoveNone {
		return "resign"
	}
	return m.String()
}

func formatInfo(info engine.SearchInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d", info.Depth)
	if info.MateIn != 0 {
		fmt.Fprintf(&sb, " score mate %d", info.MateIn)
	} else {
		fmt.Fprintf(&sb, " score cp %d", info.Score)
	}
	ms := info.Time.Milliseconds()
	nps := info.Nodes * 1000 / uint64(ms+1)
	fmt.Fprintf(&sb, " nodes %d time %d nps %d hashfull %d", info.Nodes, ms, nps, info.HashFull)
	if len(info.PV) > 0 {
		sb.WriteString(" pv")
		for _, m := range info.PV {
			sb.WriteString(" ")
			sb.WriteString(m.String())
		}
	}
	return sb.String()
}

// parseLimits translates the USI `go` argument vocabulary (btime,
// wtime, byoyomi, binc, winc, depth, nodes, mate, infinite, movetime)
// into engine.Limits, following the reference parseLimits.
func parseLimits(args []string) engine.Limits {
	var limits engine.Limits
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			limits.Infinite = true
		case "btime":
			i++
			limits.Remaining[shogi.Black] = parseMillis(args, i)
		case "wtime":
			i++
			limits.Remaining[shogi.White] = parseMillis(args, i)
		case "binc":
			i++
			limits.Increment[shogi.Black] = parseMillis(args, i)
		case "winc":
			i++
			limits.Increment[shogi.White] = parseMillis(args, i)
		case "byoyomi":
			i++
			limits.Byoyomi = parseMillis(args, i)
		case "depth":
			i++
			limits.Depth, _ = atoiAt(args, i)
		case "nodes":
			i++
			n, _ := atoiAt(args, i)
			limits.Nodes = uint64(n)
		case "mate":
			i++ // mate-search depth in moves; not separately tracked
		case "movetime":
			i++
			limits.MoveTime = parseMillis(args, i)
		case "ponder":
			// ponder is accepted but not implemented distinctly from a
			// normal search; spec's Non-goals exclude a dedicated ponder
			// miss/hit state machine.
		}
	}
	return limits
}

func atoiAt(args []string, i int) (int, error) {
	if i < 0 || i >= len(args) {
		return 0, fmt.Errorf("usi: missing argument")
	}
	return strconv.Atoi(args[i])
}

func parseMillis(args []string, i int) time.Duration {
	v, err := atoiAt(args, i)
	if err != nil {
		return 0
	}
	return time.Duration(v) * time.Millisecond
}

func indexOf(args []string, token string) int {
	for i, a := range args {
		if a == token {
			return i
		}
	}
	return -1
}
