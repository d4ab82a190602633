// Package nnue implements the shogi evaluation network: a single
// hidden layer fed by a HalfKP-style feature set (a fixed perspective
// king square x every other piece, including pieces held in hand),
// updated incrementally as moves are made and unmade, following the
// reference engine's pkg/eval/nnue evaluation model.
package nnue

import (
	"github.com/toshirosawada/hayabusa/shogi"
)

const (
	// kingBuckets partitions the 81 king squares into coarser zones so
	// the feature table stays a manageable size while still letting
	// the network specialize per king location.
	kingBuckets = 9
	// boardFeatures indexes (kingBucket, pieceType-excluding-king,
	// color, square); handFeatures indexes (kingBucket, pieceType,
	// color, count-in-hand).
	boardPieceTypes = 13 // every PieceType except King
	maxHandCount     = 19
	InputSize        = kingBuckets * (boardPieceTypes*2*shogi.SquareCount + (int(shogi.PieceTypeCount)-1)*2*maxHandCount)
	HiddenSize       = 256
)

const MaxHeight = 128

// Weights is the flat parameter set, loaded from a binary file via
// LoadWeights.
type Weights struct {
	HiddenWeights []float32 // InputSize * HiddenSize
	HiddenBiases  [HiddenSize]float32
	OutputWeights [HiddenSize]float32
	OutputBias    float32
}

func NewZeroWeights() *Weights {
	return &Weights{HiddenWeights: make([]float32, InputSize*HiddenSize)}
}

const (
	addFeature    int8 = 1
	removeFeature int8 = -1
)

// Accumulator implements engine.Evaluator: a stack of hidden-layer
// activations, each built relative to the fixed accumulatorPerspective
// king, so Evaluate/Push/Pop can run alongside the search's own
// position stack without recomputing the full feature set at every
// node.
type Accumulator struct {
	weights *Weights
	layers  [MaxHeight][HiddenSize]float32
	depth   int
}

func NewAccumulator(w *Weights) *Accumulator {
	return &Accumulator{weights: w}
}

// kingBucket groups the 81 squares of one side's king into 9 coarse
// zones by rank (sq % 9, so all nine files of a rank share one
// bucket); a simplification
// standing in for the reference engine's denser king-bucket table,
// documented in DESIGN.md since the original's exact bucket mapping
// was not present in the retrieved nnue.h header.
func kingBucket(kingSq shogi.Square) int {
	return int(kingSq) % kingBuckets
}

func boardFeatureIndex(bucket int, pt shogi.PieceType, c shogi.Color, sq shogi.Square) int32 {
	ptIdx := int(pt) - 1 // King excluded, so Pawn(1) maps to 0
	if pt > shogi.King {
		ptIdx--
	}
	return int32(bucket)*int32(boardPieceTypes*2*shogi.SquareCount) +
		int32(ptIdx)*int32(2*shogi.SquareCount) +
		int32(c)*int32(shogi.SquareCount) +
		int32(sq)
}

func handFeatureIndex(bucket int, pt shogi.PieceType, c shogi.Color, count int) int32 {
	base := int32(kingBuckets) * int32(boardPieceTypes*2*shogi.SquareCount)
	ptIdx := int(pt) - 1
	return base + int32(bucket)*int32((int(shogi.PieceTypeCount)-1)*2*maxHandCount) +
		int32(ptIdx)*int32(2*maxHandCount) +
		int32(c)*int32(maxHandCount) +
		int32(count)
}

// accumulatorPerspective is the single fixed perspective every layer
// in the stack is built from: Black's own king. Holding this fixed
// (rather than following the side to move, which flips every ply) is
// what makes Push's incremental toggles valid — a feature index is
// only comparable across two layers when both were built relative to
// the same king. Evaluate compensates with the side-to-move sign flip
// below.
const accumulatorPerspective = shogi.Black

// Init rebuilds the accumulator from scratch for pos, discarding any
// incremental history. Called once per search root.
func (a *Accumulator) Init(pos *shogi.Position) {
	a.depth = 0
	a.refresh(pos, &a.layers[0])
}

// refresh recomputes layer's full feature set for pos without
// touching a.depth, used both by Init (at depth 0) and by Push's
// bucket-crossing fallback (at the new top-of-stack depth), so the
// push/pop depth bookkeeping stays in lockstep regardless of which
// path populated a layer.
func (a *Accumulator) refresh(pos *shogi.Position, layer *[HiddenSize]float32) {
	copy(layer[:], a.weights.HiddenBiases[:])

	ownKingBucket := kingBucket(pos.KingSquare(accumulatorPerspective))

	for pt := shogi.Pawn; pt < shogi.PieceTypeCount; pt++ {
		if pt == shogi.King {
			continue
		}
		for _, c := range [2]shogi.Color{shogi.Black, shogi.White} {
			bb := pos.PieceBB(pt, c)
			for !bb.Empty() {
				var sq shogi.Square
				sq, bb = bb.PopLsb()
				idx := boardFeatureIndex(ownKingBucket, pt, c, sq)
				a.addFeature(layer, idx)
			}
		}
	}
	for pt := shogi.Pawn; pt < shogi.King; pt++ {
		for _, c := range [2]shogi.Color{shogi.Black, shogi.White} {
			count := pos.Hand(c).Count(pt)
			for n := 1; n <= count; n++ {
				idx := handFeatureIndex(ownKingBucket, pt, c, n)
				a.addFeature(layer, idx)
			}
		}
	}
}

func (a *Accumulator) addFeature(layer *[HiddenSize]float32, featureIndex int32) {
	a.toggleFeature(layer, featureIndex, addFeature)
}

// Push advances the accumulator by one ply, applying move's feature
// deltas relative to accumulatorPerspective's king bucket. If that
// king crossed into a new bucket this ply, this falls back to a full
// refresh rather than an incremental patch.
func (a *Accumulator) Push(prev, cur *shogi.Position, move shogi.Move) {
	a.depth++
	if a.depth >= MaxHeight {
		a.depth = MaxHeight - 1
	}

	if move == shogi.MoveNone {
		// Null move: the board is unchanged, only the side to move
		// flips, which Evaluate already accounts for.
		copy(a.layers[a.depth][:], a.layers[a.depth-1][:])
		return
	}

	prevBucket := kingBucket(prev.KingSquare(accumulatorPerspective))
	curBucket := kingBucket(cur.KingSquare(accumulatorPerspective))

	if prevBucket != curBucket {
		a.refresh(cur, &a.layers[a.depth])
		return
	}

	copy(a.layers[a.depth][:], a.layers[a.depth-1][:])
	layer := &a.layers[a.depth]

	mover := cur.SideToMove().Opponent() // side that just moved

	if move.IsDrop() {
		pt := move.DropPiece()
		to := move.To()
		oldCount := prev.Hand(mover).Count(pt)
		a.toggleFeature(layer, handFeatureIndex(curBucket, pt, mover, oldCount), removeFeature)
		a.toggleFeature(layer, boardFeatureIndex(curBucket, pt, mover, to), addFeature)
		return
	}

	from, to := move.From(), move.To()
	moving := prev.PieceOn(from)
	if moving.Type() != shogi.King {
		a.toggleFeature(layer, boardFeatureIndex(curBucket, moving.Type(), moving.Color(), from), removeFeature)
	}

	if captured := prev.PieceOn(to); !captured.IsNone() {
		capType := shogi.Unpromoted(captured.Type())
		a.toggleFeature(layer, boardFeatureIndex(curBucket, captured.Type(), captured.Color(), to), removeFeature)
		newCount := cur.Hand(mover).Count(capType)
		a.toggleFeature(layer, handFeatureIndex(curBucket, capType, mover, newCount), addFeature)
	}

	newType := moving.Type()
	if move.IsPromotion() {
		newType = shogi.Promoted(moving.Type())
	}
	if newType != shogi.King {
		a.toggleFeature(layer, boardFeatureIndex(curBucket, newType, moving.Color(), to), addFeature)
	}
}

func (a *Accumulator) toggleFeature(layer *[HiddenSize]float32, featureIndex int32, sign int8) {
	base := featureIndex * HiddenSize
	w := a.weights.HiddenWeights
	if sign > 0 {
		for j := 0; j < HiddenSize; j++ {
			layer[j] += w[base+int32(j)]
		}
	} else {
		for j := 0; j < HiddenSize; j++ {
			layer[j] -= w[base+int32(j)]
		}
	}
}

// Pop unwinds one ply, discarding the top accumulator layer.
func (a *Accumulator) Pop() {
	if a.depth > 0 {
		a.depth--
	}
}

const maxEval = 15000

// Evaluate feeds the current hidden layer through ReLU and the
// output weights, then applies the material-scaling and clamp the
// reference engine's EvaluateQuick performs.
func (a *Accumulator) Evaluate(pos *shogi.Position) int {
	layer := &a.layers[a.depth]
	var sum float32
	for j := 0; j < HiddenSize; j++ {
		v := layer[j]
		if v < 0 {
			v = 0
		}
		sum += v * a.weights.OutputWeights[j]
	}
	output := shogi.Clamp(int(sum+a.weights.OutputBias), -maxEval, maxEval)

	np := nonPawnMaterial(pos)
	output = output * (160 + np) / 160

	if pos.SideToMove() == shogi.White {
		output = -output
	}
	return output
}

func nonPawnMaterial(pos *shogi.Position) int {
	var total int
	for _, c := range [2]shogi.Color{shogi.Black, shogi.White} {
		total += 4 * pos.PieceBB(shogi.Knight, c).PopCount()
		total += 4 * pos.PieceBB(shogi.Bishop, c).PopCount()
		total += 6 * pos.PieceBB(shogi.Rook, c).PopCount()
		total += 8 * (pos.PieceBB(shogi.Horse, c).PopCount() + pos.PieceBB(shogi.Dragon, c).PopCount())
	}
	return total
}
