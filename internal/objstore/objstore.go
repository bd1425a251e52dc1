// Package objstore abstracts the object storage that holds uploaded
// game files.
package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/freeeve/gamevault/internal/pgnstream"
)

// Storage returns a readable byte stream for a previously uploaded
// object key, along with the compression inferred from the key.
type Storage interface {
	Open(ctx context.Context, key string) (io.ReadCloser, pgnstream.Compression, error)
}

// FS is a filesystem-backed object store rooted at a directory.
type FS struct {
	root string
}

// NewFS creates the root directory if needed.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &FS{root: root}, nil
}

func (f *FS) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("objstore: bad key %q", key)
	}
	return filepath.Join(f.root, clean), nil
}

// Open returns the object's byte stream.
func (f *FS) Open(_ context.Context, key string) (io.ReadCloser, pgnstream.Compression, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, pgnstream.CompressionNone, err
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, pgnstream.CompressionNone, fmt.Errorf("objstore: open %q: %w", key, err)
	}
	return file, pgnstream.CompressionForKey(key), nil
}

// Put stores an object; used by the one-shot CLI and tests.
func (f *FS) Put(_ context.Context, key string, r io.Reader) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	out, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
