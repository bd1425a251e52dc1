package pgnstream

import (
	"errors"
	"regexp"
	"strings"
)

// RawGame is one game reduced to its tag map and mainline SAN moves.
// Comments, variations and NAGs are dropped; the trailing result token
// is kept separately when present.
type RawGame struct {
	Tags   map[string]string
	SAN    []string
	Result string
}

// ErrEmptyBlock is returned for blocks with neither tags nor moves.
var ErrEmptyBlock = errors.New("pgnstream: block has no tags and no moves")

var tagPairRe = regexp.MustCompile(`^\[\s*(\w+)\s+"(.*)"\s*\]`)

// move numbers like "1." or "12..." with an optionally attached move
var moveNumRe = regexp.MustCompile(`^\d+\.*(.*)$`)

// ParseBlock splits a raw PGN block into tag pairs and mainline SAN.
// It is deliberately not a full PGN grammar: unparseable movetext
// tokens are skipped, and malformed games surface later as replay
// truncation rather than a hard parse failure.
func ParseBlock(text string) (*RawGame, error) {
	g := &RawGame{Tags: make(map[string]string)}

	var movetext strings.Builder
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			if m := tagPairRe.FindStringSubmatch(trimmed); m != nil {
				g.Tags[m[1]] = m[2]
				continue
			}
		}
		// Rest-of-line comments never span lines.
		if i := strings.IndexByte(trimmed, ';'); i >= 0 {
			trimmed = trimmed[:i]
		}
		movetext.WriteString(trimmed)
		movetext.WriteByte('\n')
	}

	tokenizeMovetext(movetext.String(), g)

	if len(g.Tags) == 0 && len(g.SAN) == 0 {
		return nil, ErrEmptyBlock
	}
	return g, nil
}

// tokenizeMovetext walks the movetext once, tracking brace comments and
// variation depth, and classifies whitespace-separated tokens.
func tokenizeMovetext(text string, g *RawGame) {
	inComment := false
	depth := 0
	var tok strings.Builder

	flush := func() {
		if tok.Len() > 0 && depth == 0 {
			classifyToken(tok.String(), g)
		}
		tok.Reset()
	}

	for _, r := range text {
		switch {
		case inComment:
			if r == '}' {
				inComment = false
			}
		case r == '{':
			flush()
			inComment = true
		case r == '(':
			flush()
			depth++
		case r == ')':
			flush()
			if depth > 0 {
				depth--
			}
		case r == ' ' || r == '\t' || r == '\n':
			flush()
		default:
			tok.WriteRune(r)
		}
	}
	flush()
}

func classifyToken(tok string, g *RawGame) {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		g.Result = tok
		return
	case "0-0": // informal castling notation
		g.SAN = append(g.SAN, "O-O")
		return
	case "0-0-0":
		g.SAN = append(g.SAN, "O-O-O")
		return
	}
	if tok[0] == '$' {
		return
	}
	// "12." / "12..." / "1.e4"
	if tok[0] >= '0' && tok[0] <= '9' {
		m := moveNumRe.FindStringSubmatch(tok)
		if m == nil {
			return
		}
		tok = m[1]
	}
	tok = strings.TrimRight(tok, "!?")
	if tok == "" {
		return
	}
	g.SAN = append(g.SAN, tok)
}
