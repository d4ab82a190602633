package nnue

import (
	"encoding/binary"
	"io"
	"math"
)

// magicHeader tags the weight file format; LoadWeights rejects
// anything else rather than silently misinterpreting bytes.
var magicHeader = [4]byte{'H', 'Y', 'B', '1'}

// LoadWeights reads a flat little-endian float32 weight file: a
// 4-byte magic header, then HiddenWeights, HiddenBiases,
// OutputWeights and OutputBias in that order, mirroring the
// reference engine's load.go layout adapted to this network's shape.
func LoadWeights(r io.Reader) (*Weights, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, err
	}
	if magic != magicHeader {
		return nil, errInvalidMagic
	}

	w := NewZeroWeights()
	buf := make([]byte, 4)

	readFloat := func() (float32, error) {
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, err
		}
		return math.Float32frombits(binary.LittleEndian.Uint32(buf)), nil
	}

	for i := range w.HiddenWeights {
		v, err := readFloat()
		if err != nil {
			return nil, err
		}
		w.HiddenWeights[i] = v
	}
	for i := range w.HiddenBiases {
		v, err := readFloat()
		if err != nil {
			return nil, err
		}
		w.HiddenBiases[i] = v
	}
	for i := range w.OutputWeights {
		v, err := readFloat()
		if err != nil {
			return nil, err
		}
		w.OutputWeights[i] = v
	}
	v, err := readFloat()
	if err != nil {
		return nil, err
	}
	w.OutputBias = v

	return w, nil
}

// SaveWeights writes the layout LoadWeights expects.
func SaveWeights(wtr io.Writer, w *Weights) error {
	if _, err := wtr.Write(magicHeader[:]); err != nil {
		return err
	}
	buf := make([]byte, 4)
	writeFloat := func(v float32) error {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		_, err := wtr.Write(buf)
		return err
	}
	for _, v := range w.HiddenWeights {
		if err := writeFloat(v); err != nil {
			return err
		}
	}
	for _, v := range w.HiddenBiases {
		if err := writeFloat(v); err != nil {
			return err
		}
	}
	for _, v := range w.OutputWeights {
		if err := writeFloat(v); err != nil {
			return err
		}
	}
	return writeFloat(w.OutputBias)
}

type errString string

func (e errString) Error() string { return string(e) }

const errInvalidMagic = errString("nnue: invalid weight file header")
