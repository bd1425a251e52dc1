// Package openings folds indexed games into per-(position, move)
// aggregate deltas for the opening explorer.
package openings

import "github.com/freeeve/gamevault/internal/position"

// Delta is one conditional increment against the per-user aggregate,
// keyed by the position the move was played from and the move itself.
type Delta struct {
	Identity       string
	MoveUCI        string
	ResultIdentity string

	WhiteWin int // 0 or 1
	Draw     int
	BlackWin int

	// Rating is the mover's rating when known.
	Rating *float64
	// Perf is the mover's score for this game: 100 win, 50 draw, 0 loss.
	Perf *float64
}

// Fold converts one game's ply stream into aggregate deltas. Games with
// an unknown result contribute nothing: exactly one result bucket must
// increment per fold, and "*" has none.
func Fold(plies []position.Ply, result string, whiteElo, blackElo *int) []Delta {
	var whiteWin, draw, blackWin int
	switch result {
	case "1-0":
		whiteWin = 1
	case "0-1":
		blackWin = 1
	case "1/2-1/2":
		draw = 1
	default:
		return nil
	}

	deltas := make([]Delta, 0, len(plies))
	for _, p := range plies {
		d := Delta{
			Identity:       p.Identity,
			MoveUCI:        p.MoveUCI,
			ResultIdentity: p.IdentityAfter,
			WhiteWin:       whiteWin,
			Draw:           draw,
			BlackWin:       blackWin,
		}

		// Rating and performance follow the side that played the move.
		whiteToMove := p.SideToMove == "w"
		elo := whiteElo
		if !whiteToMove {
			elo = blackElo
		}
		if elo != nil {
			r := float64(*elo)
			d.Rating = &r
		}

		perf := 50.0
		switch {
		case draw == 1:
			perf = 50
		case (whiteWin == 1) == whiteToMove:
			perf = 100
		default:
			perf = 0
		}
		d.Perf = &perf

		deltas = append(deltas, d)
	}
	return deltas
}
