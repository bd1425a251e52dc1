// Package norm turns a parsed PGN block into a canonical game record:
// sanitized tags, search keys, dedup hashes, and the mainline move tree.
package norm

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/freeeve/gamevault/internal/pgnstream"
)

// TreeShape tags the move-tree variant. The shape is decided once here;
// downstream consumers switch on it instead of re-inspecting the moves.
type TreeShape string

const (
	// ShapeMainline is a flat mainline move list.
	ShapeMainline TreeShape = "mainline"
	// ShapeTree is reserved for variation trees.
	ShapeTree TreeShape = "tree"
)

// MoveTree is the tagged move-tree variant persisted with a game.
type MoveTree struct {
	Shape    TreeShape `json:"shape"`
	Mainline []string  `json:"mainline,omitempty"`
}

// Game is a normalized game record ready for dedup and persistence.
type Game struct {
	White    string
	Black    string
	WhiteKey string
	BlackKey string
	Result   string

	Event       *string
	EventKey    *string
	Site        *string
	ECO         *string
	TimeControl *string
	Date        *time.Time
	Rated       *bool
	WhiteElo    *int
	BlackElo    *int

	StartFEN *string // nil = standard initial position
	PlyCount *int

	// MovesHash identifies moves+result+start; invariant to comments,
	// annotations and whitespace. Authoritative dedup key per user.
	MovesHash string
	// CanonicalHash identifies the whitespace-normalized raw text.
	CanonicalHash string

	RawPGN string
	Moves  MoveTree
}

// Normalize builds a Game from a parsed block and its raw text.
func Normalize(raw *pgnstream.RawGame, rawText string) *Game {
	g := &Game{
		White:  tagOrDefault(raw.Tags, "White", "Unknown White"),
		Black:  tagOrDefault(raw.Tags, "Black", "Unknown Black"),
		Result: normalizeResult(raw),
		RawPGN: rawText,
		Moves:  MoveTree{Shape: ShapeMainline, Mainline: raw.SAN},
	}
	g.WhiteKey = SearchKey(g.White)
	g.BlackKey = SearchKey(g.Black)

	g.Event = optionalTag(raw.Tags, "Event")
	if g.Event != nil {
		k := SearchKey(*g.Event)
		g.EventKey = &k
	}
	g.Site = optionalTag(raw.Tags, "Site")
	g.ECO = optionalTag(raw.Tags, "ECO")
	g.TimeControl = optionalTag(raw.Tags, "TimeControl")
	g.Date = parseDate(raw.Tags["Date"])
	g.Rated = parseRated(raw.Tags["Rated"])
	g.WhiteElo = parseRating(raw.Tags["WhiteElo"])
	g.BlackElo = parseRating(raw.Tags["BlackElo"])

	if fen := strings.TrimSpace(raw.Tags["FEN"]); fen != "" {
		g.StartFEN = &fen
	}
	g.PlyCount = parsePlyCount(raw.Tags["PlyCount"], len(raw.SAN))

	g.MovesHash = MovesHash(g.StartFEN, raw.SAN, g.Result)
	g.CanonicalHash = CanonicalHash(rawText)
	return g
}

// MovesHash digests starting position, mainline SAN and result.
func MovesHash(startFEN *string, san []string, result string) string {
	start := "startpos"
	if startFEN != nil {
		start = *startFEN
	}
	h := sha256.New()
	h.Write([]byte(start))
	h.Write([]byte("\n"))
	h.Write([]byte(strings.Join(san, " ")))
	h.Write([]byte("\n"))
	h.Write([]byte(result))
	return hex.EncodeToString(h.Sum(nil))
}

// CanonicalHash digests the raw text with every line trimmed, blank
// lines dropped, and internal whitespace collapsed.
func CanonicalHash(rawText string) string {
	var lines []string
	for _, line := range strings.Split(rawText, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// SearchKey normalizes a name or event for search: trim, collapse
// whitespace, lowercase. Independent of dedup.
func SearchKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func tagOrDefault(tags map[string]string, key, def string) string {
	v := strings.TrimSpace(tags[key])
	if v == "" {
		return def
	}
	return v
}

func optionalTag(tags map[string]string, key string) *string {
	v := strings.TrimSpace(tags[key])
	if v == "" {
		return nil
	}
	return &v
}

func normalizeResult(raw *pgnstream.RawGame) string {
	r := strings.TrimSpace(raw.Tags["Result"])
	if r == "" {
		r = raw.Result
	}
	switch r {
	case "1-0", "0-1", "1/2-1/2":
		return r
	default:
		return "*"
	}
}

// parseDate accepts only strict YYYY.MM.DD with no wildcards.
func parseDate(v string) *time.Time {
	v = strings.TrimSpace(v)
	if len(v) != 10 || strings.ContainsAny(v, "?*") {
		return nil
	}
	t, err := time.Parse("2006.01.02", v)
	if err != nil {
		return nil
	}
	return &t
}

func parseRated(v string) *bool {
	t := true
	f := false
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return &t
	case "false", "no", "0":
		return &f
	default:
		return nil
	}
}

// parseRating treats "", "?" and "-" as absent.
func parseRating(v string) *int {
	v = strings.TrimSpace(v)
	if v == "" || v == "?" || v == "-" {
		return nil
	}
	r, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &r
}

func parsePlyCount(v string, moveCount int) *int {
	v = strings.TrimSpace(v)
	if v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n >= 0 {
			return &n
		}
	}
	if moveCount > 0 {
		return &moveCount
	}
	return nil
}
