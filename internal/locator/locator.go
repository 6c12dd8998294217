// Package locator finds the newest nginx UI access log in a directory.
package locator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const Prefix = "nginx-access-ui.log-"

// ErrNoLogDir is returned when the log directory does not exist. Callers treat
// it as "nothing to do", not as a failure.
var ErrNoLogDir = errors.New("log directory does not exist")

// LogFile identifies one dated access log.
type LogFile struct {
	Name string // file name inside the log directory
	Date string // date token exactly as it appears in Name
	Ext  string // "log", "gz" or "gzip"
}

// Key is the date as a comparable number (20170630 for both "20170630" and "2017.06.30").
func (f LogFile) Key() int {
	n, _ := strconv.Atoi(strings.ReplaceAll(f.Date, ".", ""))
	return n
}

// Time returns the calendar day encoded in the file name.
func (f LogFile) Time() time.Time {
	t, _ := time.Parse("20060102", strings.ReplaceAll(f.Date, ".", ""))
	return t
}

// Compressed reports whether the file is gzip-encoded.
func (f LogFile) Compressed() bool { return f.Ext != "log" }

// Parse reports whether name follows nginx-access-ui.log-<DATE>.<ext>, where
// DATE is YYYYMMDD or YYYY.MM.DD and ext is log, gz or gzip.
func Parse(name string) (LogFile, bool) {
	rest, ok := strings.CutPrefix(name, Prefix)
	if !ok {
		return LogFile{}, false
	}
	dot := strings.LastIndexByte(rest, '.')
	if dot < 0 {
		return LogFile{}, false
	}
	date, ext := rest[:dot], rest[dot+1:]
	switch ext {
	case "log", "gz", "gzip":
	default:
		return LogFile{}, false
	}
	if !validDate(date) {
		return LogFile{}, false
	}
	return LogFile{Name: name, Date: date, Ext: ext}, true
}

func validDate(s string) bool {
	var digits string
	switch len(s) {
	case 8:
		digits = s
	case 10:
		if s[4] != '.' || s[7] != '.' {
			return false
		}
		digits = s[:4] + s[5:7] + s[8:]
	default:
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	_, err := time.Parse("20060102", digits)
	return err == nil
}

// Locate returns the log with the greatest date in dir, or nil when none
// qualifies. On equal dates the first entry in directory order (sorted by
// name) wins.
func Locate(dir string) (*LogFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoLogDir, dir)
		}
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	var best *LogFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lf, ok := Parse(e.Name())
		if !ok {
			continue
		}
		if best == nil || lf.Key() > best.Key() {
			cp := lf
			best = &cp
		}
	}
	return best, nil
}

// Path joins dir with the file name.
func (f LogFile) Path(dir string) string { return filepath.Join(dir, f.Name) }
