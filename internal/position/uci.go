package position

import (
	"fmt"
	"strings"
)

// Square indices follow A1=0, B1=1, ..., H8=63.

func squareName(idx int) string {
	return string([]byte{byte('a' + idx%8), byte('1' + idx/8)})
}

// board is a 64-square piece array decoded from a FEN placement field.
type board [64]byte

// boardFromPlacement expands a FEN placement field. Empty squares are 0.
func boardFromPlacement(placement string) (board, error) {
	var b board
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return b, fmt.Errorf("position: placement has %d ranks", len(ranks))
	}
	for r, rank := range ranks {
		file := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			case strings.ContainsRune("KQRBNPkqrbnp", c):
				if file > 7 {
					return b, fmt.Errorf("position: rank %d overflows", 8-r)
				}
				b[(7-r)*8+file] = byte(c)
				file++
			default:
				return b, fmt.Errorf("position: bad placement char %q", c)
			}
		}
		if file != 8 {
			return b, fmt.Errorf("position: rank %d has %d files", 8-r, file)
		}
	}
	return b, nil
}

func isWhitePiece(p byte) bool { return p >= 'A' && p <= 'Z' }

func ownPiece(p byte, white bool) bool {
	if p == 0 {
		return false
	}
	return isWhitePiece(p) == white
}

// MoveFacts describes the move that transforms one position into the
// next, in coordinate form plus the flags the indexer needs to maintain
// the halfmove clock.
type MoveFacts struct {
	UCI      string
	PawnMove bool
	Capture  bool
}

// DeriveMove computes the coordinate form of the move played between
// two adjacent positions by diffing their placements. Castling is keyed
// on the king's two-file move; promotions append the piece letter.
func DeriveMove(before, after Fields) (MoveFacts, error) {
	bb, err := boardFromPlacement(before.Placement)
	if err != nil {
		return MoveFacts{}, err
	}
	ab, err := boardFromPlacement(after.Placement)
	if err != nil {
		return MoveFacts{}, err
	}
	white := before.SideToMove == "w"

	var froms, tos []int
	for s := 0; s < 64; s++ {
		if bb[s] == ab[s] {
			continue
		}
		if ownPiece(bb[s], white) && !ownPiece(ab[s], white) {
			froms = append(froms, s)
		}
		if ownPiece(ab[s], white) {
			tos = append(tos, s)
		}
	}
	if len(froms) == 0 || len(tos) == 0 {
		return MoveFacts{}, fmt.Errorf("position: no move between placements")
	}

	from, to := froms[0], tos[0]
	if len(froms) > 1 || len(tos) > 1 {
		// Castling moves king and rook together; report the king's move.
		from, to = -1, -1
		for _, s := range froms {
			if bb[s] == 'K' || bb[s] == 'k' {
				from = s
			}
		}
		for _, s := range tos {
			if ab[s] == 'K' || ab[s] == 'k' {
				to = s
			}
		}
		if from < 0 || to < 0 {
			return MoveFacts{}, fmt.Errorf("position: ambiguous move between placements")
		}
	}

	facts := MoveFacts{
		UCI:      squareName(from) + squareName(to),
		PawnMove: bb[from] == 'P' || bb[from] == 'p',
		Capture:  countPieces(bb, !white) > countPieces(ab, !white),
	}
	if facts.PawnMove && ab[to] != bb[from] {
		facts.UCI += strings.ToLower(string(ab[to]))
	}
	return facts, nil
}

func countPieces(b board, white bool) int {
	n := 0
	for _, p := range b {
		if ownPiece(p, white) {
			n++
		}
	}
	return n
}
