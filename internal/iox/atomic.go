package iox

import (
	"bufio"
	"os"
	"path/filepath"
)

// AtomicFile buffers writes into a temp file next to the destination. Commit
// renames it into place; Abort (or Commit failing) removes it, so readers never
// see a half-written file.
type AtomicFile struct {
	*bufio.Writer
	f    *os.File
	dst  string
	done bool
}

// CreateAtomic starts an atomic write of path. The parent directory must exist.
func CreateAtomic(path string) (*AtomicFile, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &AtomicFile{Writer: bufio.NewWriterSize(f, 1<<16), f: f, dst: path}, nil
}

// Commit flushes, closes and renames the temp file to the destination.
func (a *AtomicFile) Commit() error {
	if a.done {
		return nil
	}
	a.done = true
	tmp := a.f.Name()
	if err := a.Flush(); err != nil {
		a.f.Close()
		os.Remove(tmp)
		return err
	}
	if err := a.f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, a.dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Abort discards the temp file. It is a no-op after Commit.
func (a *AtomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	tmp := a.f.Name()
	a.f.Close()
	return os.Remove(tmp)
}
