// Package pgnstream turns a byte stream of concatenated PGN games into
// raw per-game text blocks and parses a block into tags and mainline moves.
package pgnstream

import (
	"bufio"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies how an uploaded object is compressed.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionGzip
)

// CompressionForKey infers compression from an object key's extension.
func CompressionForKey(key string) Compression {
	switch {
	case strings.HasSuffix(key, ".zst"):
		return CompressionZstd
	case strings.HasSuffix(key, ".gz"):
		return CompressionGzip
	default:
		return CompressionNone
	}
}

// Block is one raw PGN game text with its source location.
type Block struct {
	Text string
	Line int // 1-based line number of the block's first line
}

// Scanner yields raw PGN blocks from a possibly compressed stream.
// Memory use is bounded by one in-flight block, not the whole file.
type Scanner struct {
	sc      *bufio.Scanner
	closers []func()

	cur     Block
	lines   []string
	start   int
	lineNo  int
	sawMove bool
	pending string // tag line that opened the next block
	hasPend bool
	pendNo  int
	done    bool
	err     error
}

// scanner buffer caps a single line, not a block; annotation-heavy PGN
// exports routinely exceed bufio's 64KB default.
const maxLineSize = 1 << 20

// NewScanner wraps r with the matching decompressor and prepares block
// scanning.
func NewScanner(r io.Reader, c Compression) (*Scanner, error) {
	s := &Scanner{}
	switch c {
	case CompressionZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, zr.Close)
		r = zr
	case CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = gr.Close() })
		r = gr
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	s.sc = sc
	return s, nil
}

// Scan advances to the next block. It returns false at end of stream or
// on error; check Err afterwards.
func (s *Scanner) Scan() bool {
	if s.err != nil || s.done && !s.hasPend && len(s.lines) == 0 {
		return false
	}
	s.lines = s.lines[:0]
	s.sawMove = false
	s.start = 0

	if s.hasPend {
		s.lines = append(s.lines, s.pending)
		s.start = s.pendNo
		s.hasPend = false
	}

	for !s.done {
		if !s.sc.Scan() {
			s.err = s.sc.Err()
			s.done = true
			break
		}
		s.lineNo++
		line := strings.TrimSuffix(s.sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		isTag := strings.HasPrefix(trimmed, "[")

		// A tag line after movetext starts the next game.
		if isTag && s.sawMove && len(s.lines) > 0 {
			s.pending = line
			s.pendNo = s.lineNo
			s.hasPend = true
			break
		}
		if len(s.lines) == 0 {
			if trimmed == "" {
				continue
			}
			s.start = s.lineNo
		}
		s.lines = append(s.lines, line)
		if trimmed != "" && !isTag {
			s.sawMove = true
		}
	}

	if len(s.lines) == 0 {
		return false
	}
	s.cur = Block{Text: strings.Join(s.lines, "\n"), Line: s.start}
	s.lines = s.lines[:0]
	return true
}

// Block returns the block produced by the last successful Scan.
func (s *Scanner) Block() Block { return s.cur }

// Err reports the first read or decompression error encountered.
func (s *Scanner) Err() error { return s.err }

// Close releases decompressor resources.
func (s *Scanner) Close() {
	for _, c := range s.closers {
		c()
	}
}
