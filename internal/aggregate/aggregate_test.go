package aggregate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

// sliceSource serves lines from memory and counts how many were pulled.
type sliceSource struct {
	lines []string
	pos   int
	err   error
}

func (s *sliceSource) Next() bool {
	if s.pos >= len(s.lines) {
		return false
	}
	s.pos++
	return true
}

func (s *sliceSource) Text() string { return s.lines[s.pos-1] }
func (s *sliceSource) Err() error   { return s.err }

func good(url string, d string) string {
	return fmt.Sprintf(`1.2.3.4 -  - [29/Jun/2017:03:50:22 +0300] "GET %s HTTP/1.1" 200 927 "-" "curl" "-" "1498697422-2190034393-4708-9752759" "dc7161be3" %s`, url, d)
}

const bad = `1.2.3.4 -  - [29/Jun/2017:03:50:22 +0300] "-" 400 0 "-" "-" "-" "-" "-" 0`

func TestAggregateClean(t *testing.T) {
	src := &sliceSource{lines: []string{
		good("/b", "0.200"),
		good("/a", "0.100"),
		good("/b", "0.400"),
		good("/c", "1.000"),
	}}
	table, c, err := Aggregate(src, Options{})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if c.Malformed != 0 {
		t.Errorf("Malformed = %d, want 0", c.Malformed)
	}
	if c.Lines != 4 || c.Parsed != 4 {
		t.Errorf("Lines/Parsed = %d/%d, want 4/4", c.Lines, c.Parsed)
	}
	if table.Samples() != 4 {
		t.Errorf("Samples() = %d, want 4", table.Samples())
	}
	wantOrder := []string{"/b", "/a", "/c"}
	if got := table.URLs(); strings.Join(got, ",") != strings.Join(wantOrder, ",") {
		t.Errorf("URLs() = %v, want %v", got, wantOrder)
	}
	if got := table.Times("/b"); len(got) != 2 || got[0] != 0.2 || got[1] != 0.4 {
		t.Errorf("Times(/b) = %v, want [0.2 0.4]", got)
	}
}

func TestAggregateThresholdDisabled(t *testing.T) {
	lines := []string{good("/a", "0.100")}
	for i := 0; i < 50; i++ {
		lines = append(lines, bad)
	}
	table, c, err := Aggregate(&sliceSource{lines: lines}, Options{ErrorThreshold: 0})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if table == nil || table.Len() != 1 {
		t.Fatalf("table = %+v, want one URL", table)
	}
	if c.Malformed != 50 {
		t.Errorf("Malformed = %d, want 50", c.Malformed)
	}
}

func TestAggregateThresholdTrips(t *testing.T) {
	lines := []string{
		good("/a", "0.100"),
		bad,
		good("/a", "0.200"),
		bad,
		bad, // third malformed line: abort here
		good("/b", "0.300"),
		bad,
		good("/c", "0.300"),
	}
	src := &sliceSource{lines: lines}
	table, c, err := Aggregate(src, Options{ErrorThreshold: 3})
	if !errors.Is(err, ErrThresholdReached) {
		t.Fatalf("err = %v, want ErrThresholdReached", err)
	}
	if table != nil {
		t.Errorf("table = %+v, want nil", table)
	}
	if c.Malformed != 3 {
		t.Errorf("Malformed = %d, want 3", c.Malformed)
	}
	if src.pos != 5 || c.Lines != 5 {
		t.Errorf("read %d lines (counter %d), want 5", src.pos, c.Lines)
	}
}

func TestAggregateThresholdNotReached(t *testing.T) {
	src := &sliceSource{lines: []string{bad, good("/a", "0.100"), bad}}
	table, c, err := Aggregate(src, Options{ErrorThreshold: 3})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if table == nil || table.Len() != 1 {
		t.Fatalf("table = %+v, want one URL", table)
	}
	if c.Malformed != 2 {
		t.Errorf("Malformed = %d, want 2", c.Malformed)
	}
}

func TestAggregateNegativeThreshold(t *testing.T) {
	if _, _, err := Aggregate(&sliceSource{}, Options{ErrorThreshold: -1}); err == nil {
		t.Fatal("expected error for negative threshold")
	}
}

func TestAggregateReadError(t *testing.T) {
	src := &sliceSource{lines: []string{good("/a", "0.100")}, err: errors.New("disk gone")}
	table, _, err := Aggregate(src, Options{})
	if err == nil || !strings.Contains(err.Error(), "disk gone") {
		t.Fatalf("err = %v, want read error", err)
	}
	if table != nil {
		t.Errorf("table = %+v, want nil", table)
	}
}

func TestAggregateProgress(t *testing.T) {
	lines := make([]string, 0, 2000)
	for i := 0; i < 2000; i++ {
		lines = append(lines, good("/a", "0.100"))
	}
	calls := 0
	src := &slowSource{sliceSource: sliceSource{lines: lines}}
	_, _, err := Aggregate(src, Options{
		Progress:      func(Counters) { calls++ },
		ProgressEvery: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls == 0 {
		t.Error("Progress never called")
	}
}

type slowSource struct{ sliceSource }

func (s *slowSource) Next() bool {
	if s.pos%500 == 0 {
		time.Sleep(2 * time.Millisecond)
	}
	return s.sliceSource.Next()
}

func TestAggregateFileGzip(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		good("/a", "0.100"),
		good("/a", "0.300"),
		bad,
		good("/b", "2.000"),
	}, "\n") + "\n"

	gzPath := filepath.Join(dir, "nginx-access-ui.log-20170630.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	gw.Close()
	f.Close()

	plainPath := filepath.Join(dir, "nginx-access-ui.log-20170630.log")
	if err := os.WriteFile(plainPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, p := range []string{gzPath, plainPath} {
		table, c, err := AggregateFile(p, Options{})
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		if c.Lines != 4 || c.Malformed != 1 {
			t.Errorf("%s: counters = %+v, want 4 lines / 1 malformed", p, c)
		}
		if table.Len() != 2 || table.Samples() != 3 {
			t.Errorf("%s: Len/Samples = %d/%d, want 2/3", p, table.Len(), table.Samples())
		}
	}
}

func TestAggregateFileMissing(t *testing.T) {
	if _, _, err := AggregateFile(filepath.Join(t.TempDir(), "nope.log"), Options{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
