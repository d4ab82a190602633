package shogi

// Hand holds one color's captured, unpromoted pieces as small
// counters. Index is by PieceType for pawn, lance, knight, silver,
// gold, bishop, rook; other piece types are never held in hand.
type Hand [PieceTypeCount]uint8

var handMax = [PieceTypeCount]uint8{
	Pawn: 18, Lance: 4, Knight: 4, Silver: 4, Gold: 4, Bishop: 2, Rook: 2,
}

func (h Hand) Empty() bool {
	for _, pt := range handPieceTypes {
		if h[pt] != 0 {
			return false
		}
	}
	return true
}

var handPieceTypes = [7]PieceType{Pawn, Lance, Knight, Silver, Gold, Bishop, Rook}

func (h Hand) Count(pt PieceType) int {
	return int(h[pt])
}

// Add increments the count of pt, clamped to its maximum.
func (h *Hand) Add(pt PieceType) {
	if h[pt] < handMax[pt] {
		h[pt]++
	}
}

// Remove decrements the count of pt, never going below zero.
func (h *Hand) Remove(pt PieceType) {
	if h[pt] > 0 {
		h[pt]--
	}
}

// MaxInHand returns the maximum number of pt a hand may ever hold.
func MaxInHand(pt PieceType) int {
	return int(handMax[pt])
}
