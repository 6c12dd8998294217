package iox

import (
	"bufio"
	"io"
	"strings"
)

// Lines yields the lines of a log one at a time. The underlying file is
// released by Close, which is safe to call more than once.
type Lines struct {
	src    io.ReadCloser
	br     *bufio.Reader
	line   string
	err    error
	done   bool
	closed bool
}

// OpenLines opens path (plain or gzip) as a line stream.
func OpenLines(path string) (*Lines, error) {
	src, err := OpenAuto(path)
	if err != nil {
		return nil, err
	}
	return NewLines(src), nil
}

// NewLines wraps an already opened reader.
func NewLines(src io.ReadCloser) *Lines {
	return &Lines{src: src, br: bufio.NewReaderSize(src, 1<<20)}
}

// Next advances to the next line. It returns false at end of input or on a
// read error; Err tells the two apart.
func (l *Lines) Next() bool {
	if l.done {
		return false
	}
	s, err := l.br.ReadString('\n')
	if err != nil {
		l.done = true
		if err != io.EOF {
			l.err = err
			return false
		}
		if s == "" {
			return false
		}
	}
	l.line = strings.TrimRight(s, "\r\n")
	return true
}

// Text returns the current line without its terminator.
func (l *Lines) Text() string { return l.line }

// Err returns the first non-EOF read error.
func (l *Lines) Err() error { return l.err }

// Close releases the underlying reader. Repeated calls return nil.
func (l *Lines) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	l.done = true
	return l.src.Close()
}
