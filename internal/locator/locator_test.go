package locator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatalf("touch %s: %v", n, err)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		ok     bool
		date   string
		ext    string
		keyNum int
	}{
		{name: "nginx-access-ui.log-20170630.gz", ok: true, date: "20170630", ext: "gz", keyNum: 20170630},
		{name: "nginx-access-ui.log-20170630.log", ok: true, date: "20170630", ext: "log", keyNum: 20170630},
		{name: "nginx-access-ui.log-2022.04.02.gzip", ok: true, date: "2022.04.02", ext: "gzip", keyNum: 20220402},
		{name: "nginx-access-ui.log-20170630.bz2"},
		{name: "nginx-access-ui.log-20170630"},
		{name: "nginx-access-ui.log-2017063.log"},
		{name: "nginx-access-ui.log-2017-06-30.log"},
		{name: "nginx-access-ui.log-20171330.log"},
		{name: "nginx-access-ui.log-2017.0630.log"},
		{name: "nginx-access-api.log-20170630.log"},
		{name: "xnginx-access-ui.log-20170630.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lf, ok := Parse(tt.name)
			if ok != tt.ok {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if !ok {
				return
			}
			if lf.Date != tt.date {
				t.Errorf("Date = %q, want %q", lf.Date, tt.date)
			}
			if lf.Ext != tt.ext {
				t.Errorf("Ext = %q, want %q", lf.Ext, tt.ext)
			}
			if lf.Key() != tt.keyNum {
				t.Errorf("Key() = %d, want %d", lf.Key(), tt.keyNum)
			}
		})
	}
}

func TestLocatePicksNewest(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"nginx-access-ui.log-2022.03.02.log",
		"nginx-access-ui.log-2022.03.02.bz",
		"nginx-access-ui.log-2021.03.02.log",
		"nginx-access-ui.log-2022.04.02.gzip",
		"nginx-access-ui.log-20220401.gz",
		"report-2022.05.01.html",
	)
	if err := os.Mkdir(filepath.Join(dir, "nginx-access-ui.log-20991231.log"), 0o755); err != nil {
		t.Fatal(err)
	}

	lf, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if lf == nil {
		t.Fatal("Locate returned nil")
	}
	if lf.Name != "nginx-access-ui.log-2022.04.02.gzip" {
		t.Errorf("Name = %q, want nginx-access-ui.log-2022.04.02.gzip", lf.Name)
	}
	if lf.Date != "2022.04.02" {
		t.Errorf("Date = %q, want 2022.04.02", lf.Date)
	}
	if !lf.Compressed() {
		t.Error("Compressed() = false, want true")
	}
}

func TestLocateTieIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"nginx-access-ui.log-20170630.log",
		"nginx-access-ui.log-20170630.gz",
		"nginx-access-ui.log-20170629.log",
	)
	for i := 0; i < 5; i++ {
		lf, err := Locate(dir)
		if err != nil {
			t.Fatal(err)
		}
		// os.ReadDir sorts by name, ".gz" < ".log"
		if lf == nil || lf.Name != "nginx-access-ui.log-20170630.gz" {
			t.Fatalf("run %d: got %+v, want nginx-access-ui.log-20170630.gz", i, lf)
		}
	}
}

func TestLocateEmpty(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "access.log", "nginx-access-ui.log-20170630.txt")
	lf, err := Locate(dir)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if lf != nil {
		t.Errorf("Locate = %+v, want nil", lf)
	}
}

func TestLocateMissingDir(t *testing.T) {
	lf, err := Locate(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNoLogDir) {
		t.Fatalf("err = %v, want ErrNoLogDir", err)
	}
	if lf != nil {
		t.Errorf("Locate = %+v, want nil", lf)
	}
}

func TestLogFileTime(t *testing.T) {
	lf, _ := Parse("nginx-access-ui.log-2017.06.30.log")
	got := lf.Time()
	if got.Year() != 2017 || got.Month() != 6 || got.Day() != 30 {
		t.Errorf("Time() = %v, want 2017-06-30", got)
	}
}
