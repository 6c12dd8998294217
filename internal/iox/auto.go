package iox

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// IsCompressed reports whether path names a gzip file (.gz or .gzip).
func IsCompressed(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return true
	}
	return false
}

// OpenAuto opens path for reading, transparently decompressing gzip files.
func OpenAuto(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if IsCompressed(path) {
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &rc{Reader: gr, Closers: []io.Closer{gr, f}}, nil
	}
	return f, nil
}

type rc struct {
	io.Reader
	Closers []io.Closer
}

func (r *rc) Close() error {
	var err error
	for i := range r.Closers {
		if e := r.Closers[i].Close(); err == nil && e != nil {
			err = e
		}
	}
	return err
}
