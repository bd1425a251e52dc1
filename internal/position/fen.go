// Package position canonicalizes chess positions and replays games into
// per-ply index records.
package position

import (
	"fmt"
	"strconv"
	"strings"
)

// Fields holds the parsed components of a FEN string.
type Fields struct {
	Placement  string
	SideToMove string
	Castling   string
	EnPassant  string
	Halfmove   int
	Fullmove   int
}

// ParseFEN splits a FEN into its components. The two counters are
// optional; missing counters default to 0 and 1.
func ParseFEN(fen string) (Fields, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Fields{}, fmt.Errorf("position: FEN has %d fields, need at least 4: %q", len(parts), fen)
	}
	f := Fields{
		Placement:  parts[0],
		SideToMove: parts[1],
		Castling:   parts[2],
		EnPassant:  parts[3],
		Halfmove:   0,
		Fullmove:   1,
	}
	if f.SideToMove != "w" && f.SideToMove != "b" {
		return Fields{}, fmt.Errorf("position: bad side to move %q", f.SideToMove)
	}
	if len(parts) > 4 {
		n, err := strconv.Atoi(parts[4])
		if err != nil {
			return Fields{}, fmt.Errorf("position: bad halfmove clock %q", parts[4])
		}
		f.Halfmove = n
	}
	if len(parts) > 5 {
		n, err := strconv.Atoi(parts[5])
		if err != nil {
			return Fields{}, fmt.Errorf("position: bad fullmove number %q", parts[5])
		}
		f.Fullmove = n
	}
	return f, nil
}

// Identity is the normalized position identity: placement, side to
// move, castling and en passant. The move counters are excluded so that
// transpositions reached by different move orders compare equal.
func (f Fields) Identity() string {
	return f.Placement + " " + f.SideToMove + " " + f.Castling + " " + f.EnPassant
}

// NormalizeFEN canonicalizes a full position string into its identity
// and coarse material key.
func NormalizeFEN(fen string) (identity, material string, err error) {
	f, err := ParseFEN(fen)
	if err != nil {
		return "", "", err
	}
	return f.Identity(), MaterialKey(f.Placement), nil
}

var materialOrder = []byte{'K', 'Q', 'R', 'B', 'N', 'P'}

// MaterialKey serializes per-color piece counts in fixed order, e.g.
// "w:K1Q1R2B2N2P8|b:K1Q1R2B2N2P8". Many distinct positions share one
// key; it serves material-profile search only.
func MaterialKey(placement string) string {
	var white, black [128]int
	for _, r := range placement {
		switch {
		case r >= 'A' && r <= 'Z':
			white[r]++
		case r >= 'a' && r <= 'z':
			black[r-'a'+'A']++
		}
	}
	var b strings.Builder
	b.WriteString("w:")
	for _, p := range materialOrder {
		b.WriteByte(p)
		b.WriteString(strconv.Itoa(white[p]))
	}
	b.WriteString("|b:")
	for _, p := range materialOrder {
		b.WriteByte(p)
		b.WriteString(strconv.Itoa(black[p]))
	}
	return b.String()
}
