package pgnstream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const twoGames = `[Event "First"]
[Result "1-0"]

1. e4 e5 2. Nf3 1-0

[Event "Second"]
[Result "0-1"]

1. d4 d5 0-1
`

func collectBlocks(t *testing.T, s *Scanner) []Block {
	t.Helper()
	var blocks []Block
	for s.Scan() {
		blocks = append(blocks, s.Block())
	}
	if err := s.Err(); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return blocks
}

func TestScannerSplitsBlocks(t *testing.T) {
	s, err := NewScanner(strings.NewReader(twoGames), CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	blocks := collectBlocks(t, s)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if !strings.Contains(blocks[0].Text, `[Event "First"]`) || !strings.Contains(blocks[0].Text, "1. e4") {
		t.Errorf("first block missing content:\n%s", blocks[0].Text)
	}
	if !strings.Contains(blocks[1].Text, `[Event "Second"]`) || !strings.Contains(blocks[1].Text, "1. d4") {
		t.Errorf("second block missing content:\n%s", blocks[1].Text)
	}
	if blocks[0].Line != 1 {
		t.Errorf("first block line = %d, want 1", blocks[0].Line)
	}
	if blocks[1].Line != 6 {
		t.Errorf("second block line = %d, want 6", blocks[1].Line)
	}
}

func TestScannerMissingBlankSeparator(t *testing.T) {
	// Some exporters omit the blank line between games; the tag line
	// after movetext still starts a new block.
	in := "[Event \"A\"]\n1. e4 e5 *\n[Event \"B\"]\n1. d4 *\n"
	s, err := NewScanner(strings.NewReader(in), CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	blocks := collectBlocks(t, s)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if blocks[1].Line != 3 {
		t.Errorf("second block line = %d, want 3", blocks[1].Line)
	}
}

func TestScannerCRLF(t *testing.T) {
	in := strings.ReplaceAll(twoGames, "\n", "\r\n")
	s, err := NewScanner(strings.NewReader(in), CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	blocks := collectBlocks(t, s)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if strings.Contains(blocks[0].Text, "\r") {
		t.Error("carriage returns not stripped")
	}
}

func TestScannerNoTrailingNewline(t *testing.T) {
	in := "[Event \"A\"]\n\n1. e4 e5 1-0"
	s, err := NewScanner(strings.NewReader(in), CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	blocks := collectBlocks(t, s)
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	if !strings.Contains(blocks[0].Text, "1. e4 e5 1-0") {
		t.Errorf("final block lost movetext:\n%s", blocks[0].Text)
	}
}

func TestScannerEmptyInput(t *testing.T) {
	s, err := NewScanner(strings.NewReader("\n\n\n"), CompressionNone)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Scan() {
		t.Error("Scan returned true on blank input")
	}
	if err := s.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestScannerZstd(t *testing.T) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(twoGames)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := NewScanner(&buf, CompressionZstd)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got := len(collectBlocks(t, s)); got != 2 {
		t.Errorf("got %d blocks, want 2", got)
	}
}

func TestScannerGzip(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(twoGames)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := NewScanner(&buf, CompressionGzip)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got := len(collectBlocks(t, s)); got != 2 {
		t.Errorf("got %d blocks, want 2", got)
	}
}

func TestCompressionForKey(t *testing.T) {
	tests := []struct {
		key  string
		want Compression
	}{
		{"games.pgn", CompressionNone},
		{"games.pgn.zst", CompressionZstd},
		{"games.pgn.gz", CompressionGzip},
		{"u/123/upload.zst", CompressionZstd},
	}
	for _, tt := range tests {
		if got := CompressionForKey(tt.key); got != tt.want {
			t.Errorf("CompressionForKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
