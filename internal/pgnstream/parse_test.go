package pgnstream

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseBlockTags(t *testing.T) {
	g, err := ParseBlock(`[Event "Casual Game"]
[White "Morphy, Paul"]
[Black "Duke Karl"]
[Result "1-0"]

1. e4 e5 1-0`)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"Event":  "Casual Game",
		"White":  "Morphy, Paul",
		"Black":  "Duke Karl",
		"Result": "1-0",
	}
	if !reflect.DeepEqual(g.Tags, want) {
		t.Errorf("tags = %v, want %v", g.Tags, want)
	}
	if g.Result != "1-0" {
		t.Errorf("result = %q, want 1-0", g.Result)
	}
}

func TestParseBlockMovetext(t *testing.T) {
	tests := []struct {
		name string
		in   string
		san  []string
	}{
		{
			"plain",
			"1. e4 e5 2. Nf3 Nc6 1-0",
			[]string{"e4", "e5", "Nf3", "Nc6"},
		},
		{
			"attached move numbers",
			"1.e4 e5 2.Nf3 Nc6 3...Nf6 *",
			[]string{"e4", "e5", "Nf3", "Nc6", "Nf6"},
		},
		{
			"brace comments dropped",
			"1. e4 {best by test} e5 {symmetry} 2. Nf3 *",
			[]string{"e4", "e5", "Nf3"},
		},
		{
			"comment glued to move",
			"1. e4{!}e5 *",
			[]string{"e4", "e5"},
		},
		{
			"variations dropped",
			"1. e4 e5 (1... c5 2. Nf3 (2. c3 d5)) 2. Nf3 *",
			[]string{"e4", "e5", "Nf3"},
		},
		{
			"nags dropped",
			"1. e4 $1 e5 $14 2. Nf3 *",
			[]string{"e4", "e5", "Nf3"},
		},
		{
			"annotation suffixes stripped",
			"1. e4! e5?! 2. Nf3!? *",
			[]string{"e4", "e5", "Nf3"},
		},
		{
			"checks and mates kept",
			"1. e4 e5 2. Qh5 Nc6 3. Qxf7# 1-0",
			[]string{"e4", "e5", "Qh5", "Nc6", "Qxf7#"},
		},
		{
			"informal castling normalized",
			"1. e4 e5 2. 0-0 0-0-0 *",
			[]string{"e4", "e5", "O-O", "O-O-O"},
		},
		{
			"rest of line comment",
			"1. e4 e5 ; king's pawn\n2. Nf3 *",
			[]string{"e4", "e5", "Nf3"},
		},
		{
			"multiline with no result",
			"1. e4 e5\n2. Nf3 Nc6",
			[]string{"e4", "e5", "Nf3", "Nc6"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseBlock(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(g.SAN, tt.san) {
				t.Errorf("SAN = %v, want %v", g.SAN, tt.san)
			}
		})
	}
}

func TestParseBlockResultTokens(t *testing.T) {
	for _, res := range []string{"1-0", "0-1", "1/2-1/2", "*"} {
		g, err := ParseBlock("1. e4 e5 " + res)
		if err != nil {
			t.Fatal(err)
		}
		if g.Result != res {
			t.Errorf("result = %q, want %q", g.Result, res)
		}
		if len(g.SAN) != 2 {
			t.Errorf("SAN = %v, want 2 moves", g.SAN)
		}
	}
}

func TestParseBlockTagsOnly(t *testing.T) {
	g, err := ParseBlock(`[Event "Empty"]
[Result "*"]`)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.SAN) != 0 {
		t.Errorf("SAN = %v, want empty", g.SAN)
	}
	if g.Tags["Event"] != "Empty" {
		t.Errorf("tags = %v", g.Tags)
	}
}

func TestParseBlockEmpty(t *testing.T) {
	if _, err := ParseBlock("   \n  \n"); !errors.Is(err, ErrEmptyBlock) {
		t.Errorf("err = %v, want ErrEmptyBlock", err)
	}
}
