// Package datagen implements the binary game-record format used to
// persist self-play games for offline network training, per spec
// §6's "Persisted state": a type byte, the unscored opening moves
// played before scoring began, then a sequence of (move, eval,
// score) triples, terminated by an all-zero record.
package datagen

import (
	"encoding/binary"
	"io"

	"github.com/toshirosawada/hayabusa/shogi"
)

// RecordType tags how a game ended, written as the record's leading
// byte. 0 is reserved for the stream's null terminator, so real
// records start at 1.
type RecordType uint8

const (
	RecordWin RecordType = iota + 1
	RecordLoss
	RecordDraw
)

// ScoredMove is one played move along with the static evaluation and
// search score recorded for it.
type ScoredMove struct {
	Move  shogi.Move
	Eval  int16
	Score int16
}

// Record is one self-play game: its outcome, the unscored opening
// (moves played from book/random initialization, before search
// scoring began), and the scored remainder of the game.
type Record struct {
	Type           RecordType
	UnscoredMoves  []shogi.Move
	ScoredMoves    []ScoredMove
}

// Write serializes r to w in the layout spec §6 names:
// {type-byte, unscored-move-count, unscored-moves[], scored
// triples[]}, followed by a caller-supplied null terminator record
// when the stream ends (see WriteTerminator).
func Write(w io.Writer, r Record) error {
	if err := writeByte(w, byte(r.Type)); err != nil {
		return err
	}
	if err := writeUint16(w, uint16(len(r.UnscoredMoves))); err != nil {
		return err
	}
	for _, m := range r.UnscoredMoves {
		if err := writeUint16(w, uint16(m)); err != nil {
			return err
		}
	}
	for _, sm := range r.ScoredMoves {
		if err := writeUint16(w, uint16(sm.Move)); err != nil {
			return err
		}
		if err := writeInt16(w, sm.Eval); err != nil {
			return err
		}
		if err := writeInt16(w, sm.Score); err != nil {
			return err
		}
	}
	// scored-moves section terminator: a zero move marks the end of
	// this record's triples, distinct from the stream terminator.
	return writeUint16(w, uint16(shogi.MoveNone))
}

// WriteTerminator appends the all-zero null-terminator record that
// marks the end of a datagen stream.
func WriteTerminator(w io.Writer) error {
	return writeByte(w, 0)
}

// Read parses one Record from r, or io.EOF when r is positioned at
// the stream's null terminator.
func Read(r io.Reader) (Record, error) {
	typeByte, err := readByte(r)
	if err != nil {
		return Record{}, err
	}
	if typeByte == 0 {
		return Record{}, io.EOF
	}

	var rec Record
	rec.Type = RecordType(typeByte)

	count, err := readUint16(r)
	if err != nil {
		return Record{}, err
	}
	rec.UnscoredMoves = make([]shogi.Move, count)
	for i := range rec.UnscoredMoves {
		v, err := readUint16(r)
		if err != nil {
			return Record{}, err
		}
		rec.UnscoredMoves[i] = shogi.Move(v)
	}

	for {
		moveBits, err := readUint16(r)
		if err != nil {
			return Record{}, err
		}
		if moveBits == uint16(shogi.MoveNone) {
			break
		}
		eval, err := readInt16(r)
		if err != nil {
			return Record{}, err
		}
		score, err := readInt16(r)
		if err != nil {
			return Record{}, err
		}
		rec.ScoredMoves = append(rec.ScoredMoves, ScoredMove{
			Move: shogi.Move(moveBits), Eval: eval, Score: score,
		})
	}

	return rec, nil
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func writeInt16(w io.Writer, v int16) error {
	return writeUint16(w, uint16(v))
}

func readInt16(r io.Reader) (int16, error) {
	v, err := readUint16(r)
	return int16(v), err
}
