// Package aggregate streams an access log into per-URL request-time lists.
package aggregate

import (
	"errors"
	"fmt"
	"time"

	"loganalyzer/internal/iox"
	"loganalyzer/internal/lineparse"
)

// ErrThresholdReached means the malformed-line limit was hit and the partial
// table was thrown away.
var ErrThresholdReached = errors.New("malformed line threshold reached")

// Counters track one aggregation pass.
type Counters struct {
	Lines     int // lines read
	Parsed    int // lines added to the table
	Malformed int
}

// Options tune Aggregate. The zero value disables the threshold and progress.
type Options struct {
	// ErrorThreshold aborts the pass once Malformed reaches it. 0 disables the check.
	ErrorThreshold int

	// Progress, when set, is called with the running counters every ProgressEvery
	// (default 2s) and is never called concurrently with the read loop.
	Progress      func(Counters)
	ProgressEvery time.Duration
}

// LineSource is the stream Aggregate consumes; *iox.Lines implements it.
type LineSource interface {
	Next() bool
	Text() string
	Err() error
}

// AggregateFile opens path (plain or gzip) and aggregates it. The file is
// closed before returning on every path, including an early abort.
func AggregateFile(path string, opt Options) (*Table, Counters, error) {
	lines, err := iox.OpenLines(path)
	if err != nil {
		return nil, Counters{}, fmt.Errorf("open log: %w", err)
	}
	defer lines.Close()
	return Aggregate(lines, opt)
}

// Aggregate parses every line from src. On ErrThresholdReached the table is
// nil and the counters show where reading stopped.
func Aggregate(src LineSource, opt Options) (*Table, Counters, error) {
	if opt.ErrorThreshold < 0 {
		return nil, Counters{}, fmt.Errorf("error threshold must be >= 0, got %d", opt.ErrorThreshold)
	}

	var (
		c     Counters
		table = NewTable()
		tick  <-chan time.Time
	)
	if opt.Progress != nil {
		every := opt.ProgressEvery
		if every <= 0 {
			every = 2 * time.Second
		}
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		tick = ticker.C
	}

	for src.Next() {
		select {
		case <-tick:
			opt.Progress(c)
		default:
		}

		c.Lines++
		req, ok := lineparse.ParseLine(src.Text())
		if !ok {
			c.Malformed++
			if opt.ErrorThreshold > 0 && c.Malformed >= opt.ErrorThreshold {
				return nil, c, fmt.Errorf("%w: %d malformed of %d lines read", ErrThresholdReached, c.Malformed, c.Lines)
			}
			continue
		}
		table.Add(req.URL, req.Duration)
		c.Parsed++
	}
	if err := src.Err(); err != nil {
		return nil, c, fmt.Errorf("read log: %w", err)
	}
	return table, c, nil
}
