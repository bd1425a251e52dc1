package position

import "testing"

func fields(t *testing.T, fen string) Fields {
	t.Helper()
	f, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return f
}

func TestDeriveMove(t *testing.T) {
	tests := []struct {
		name     string
		before   string
		after    string
		uci      string
		pawnMove bool
		capture  bool
	}{
		{
			"pawn push",
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3",
			"e2e4", true, false,
		},
		{
			"black pawn reply",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3",
			"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6",
			"e7e5", true, false,
		},
		{
			"capture",
			"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6",
			"rnbqkbnr/ppp1pppp/8/3P4/8/8/PPPP1PPP/RNBQKBNR b KQkq -",
			"e4d5", true, true,
		},
		{
			"white kingside castling",
			"r1bqk1nr/pppp1ppp/2n5/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq -",
			"r1bqk1nr/pppp1ppp/2n5/2b1p3/2B1P3/5N2/PPPP1PPP/RNBQ1RK1 b kq -",
			"e1g1", false, false,
		},
		{
			"black queenside castling",
			"r3kbnr/pppqpppp/2n5/3p1b2/3P1B2/2N5/PPPQPPPP/R3KBNR b KQkq -",
			"2kr1bnr/pppqpppp/2n5/3p1b2/3P1B2/2N5/PPPQPPPP/R3KBNR w KQ -",
			"e8c8", false, false,
		},
		{
			"promotion",
			"8/P7/8/8/8/8/8/K6k w - -",
			"Q7/8/8/8/8/8/8/K6k b - -",
			"a7a8q", true, false,
		},
		{
			"capture promotion",
			"1r6/P7/8/8/8/8/8/K6k w - -",
			"1N6/8/8/8/8/8/8/K6k b - -",
			"a7b8n", true, true,
		},
		{
			"en passant capture",
			"8/8/8/8/3pP3/8/8/K6k b - e3",
			"8/8/8/8/8/4p3/8/K6k w - -",
			"d4e3", true, true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts, err := DeriveMove(fields(t, tt.before), fields(t, tt.after))
			if err != nil {
				t.Fatal(err)
			}
			if facts.UCI != tt.uci {
				t.Errorf("UCI = %q, want %q", facts.UCI, tt.uci)
			}
			if facts.PawnMove != tt.pawnMove {
				t.Errorf("PawnMove = %v, want %v", facts.PawnMove, tt.pawnMove)
			}
			if facts.Capture != tt.capture {
				t.Errorf("Capture = %v, want %v", facts.Capture, tt.capture)
			}
		})
	}
}

func TestDeriveMoveNoChange(t *testing.T) {
	f := fields(t, "8/8/8/8/8/8/8/K6k w - -")
	if _, err := DeriveMove(f, f); err == nil {
		t.Error("identical placements should not yield a move")
	}
}

func TestBoardFromPlacementErrors(t *testing.T) {
	for _, p := range []string{
		"8/8/8/8/8/8/8",          // 7 ranks
		"9/8/8/8/8/8/8/8",        // rank overflow
		"8/8/8/8/8/8/8/K6x",      // bad piece
		"ppppppppp/8/8/8/8/8/8/8", // 9 files
	} {
		if _, err := boardFromPlacement(p); err == nil {
			t.Errorf("boardFromPlacement(%q) should fail", p)
		}
	}
}

func TestSquareName(t *testing.T) {
	tests := []struct {
		idx  int
		want string
	}{{0, "a1"}, {7, "h1"}, {56, "a8"}, {63, "h8"}, {28, "e4"}}
	for _, tt := range tests {
		if got := squareName(tt.idx); got != tt.want {
			t.Errorf("squareName(%d) = %q, want %q", tt.idx, got, tt.want)
		}
	}
}
