package datagen

import (
	"fmt"
	"io"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/toshirosawada/hayabusa/shogi"
)

// kanjiDigits renders a rank number (1-9) as the kanji numeral a kifu
// transcript uses for the destination square's rank.
var kanjiDigits = [10]rune{'〇', '一', '二', '三', '四', '五', '六', '七', '八', '九'}

var pieceKanji = map[shogi.PieceType]string{
	shogi.Pawn: "歩", shogi.Lance: "香", shogi.Knight: "桂", shogi.Silver: "銀",
	shogi.Gold: "金", shogi.Bishop: "角", shogi.Rook: "飛", shogi.King: "玉",
	shogi.ProPawn: "と", shogi.ProLance: "成香", shogi.ProKnight: "成桂",
	shogi.ProSilver: "成銀", shogi.Horse: "馬", shogi.Dragon: "龍",
}

// WriteKifu renders a game's move list as a Shift-JIS encoded kifu
// transcript, one move per line numbered from 1, terminated by a
// result line. This is the optional human-readable counterpart to the
// binary Write format in record.go, for operators inspecting self-play output
// without a SFEN/USI tool at hand.
func WriteKifu(w io.Writer, rec Record, pieces []shogi.PieceType) error {
	enc := japanese.ShiftJIS.NewEncoder()
	sw := transform.NewWriter(w, enc)
	defer sw.Close()

	n := 1
	for i, m := range rec.UnscoredMoves {
		var pt shogi.PieceType
		if i < len(pieces) {
			pt = pieces[i]
		}
		if _, err := fmt.Fprintf(sw, "%d %s\n", n, formatKifuMove(m, pt)); err != nil {
			return err
		}
		n++
	}
	for i, sm := range rec.ScoredMoves {
		pt := shogi.PieceType(0)
		if off := len(rec.UnscoredMoves) + i; off < len(pieces) {
			pt = pieces[off]
		}
		if _, err := fmt.Fprintf(sw, "%d %s (%d)\n", n, formatKifuMove(sm.Move, pt), sm.Score); err != nil {
			return err
		}
		n++
	}

	result := "中断"
	switch rec.Type {
	case RecordWin:
		result = "先手勝ち"
	case RecordLoss:
		result = "後手勝ち"
	case RecordDraw:
		result = "千日手"
	}
	_, err := fmt.Fprintf(sw, "%d %s\n", n, result)
	return err
}

// formatKifuMove renders one move's destination square, moved piece
// kanji, and drop/promotion suffix, e.g. "５四歩" or "２三銀打".
func formatKifuMove(m shogi.Move, pt shogi.PieceType) string {
	if m.IsNone() {
		return "投了"
	}
	to := m.To()
	file := 9 - int(to.File()) // File 0 is the "9" file
	rank := int(to.Rank()) + 1

	name, ok := pieceKanji[pt]
	if !ok {
		name = "?"
	}

	suffix := ""
	if m.IsDrop() {
		suffix = "打"
	} else if m.IsPromotion() {
		suffix = "成"
	}

	return fmt.Sprintf("%c%c%s%s", '０'+rune(file), kanjiDigits[rank], name, suffix)
}
