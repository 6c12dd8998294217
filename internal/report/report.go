// Package report renders URL statistics into a static HTML page.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"loganalyzer/internal/iox"
	"loganalyzer/internal/stats"
)

// Marker is replaced by the JSON array of rows.
const Marker = "$table_json"

var ErrMarkerMissing = errors.New("template has no " + Marker + " marker")

// Name is the report file name for a log date token.
func Name(date string) string { return "report-" + date + ".html" }

// Exists reports whether dir already holds a report called name.
func Exists(dir, name string) (bool, error) {
	st, err := os.Stat(filepath.Join(dir, name))
	if err == nil {
		return !st.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Payload encodes rows as the JSON array embedded in the page. HTML characters
// are escaped so a logged URL cannot close the surrounding <script> element.
func Payload(rows []stats.URLStat) ([]byte, error) {
	if rows == nil {
		rows = []stats.URLStat{}
	}
	return sonic.ConfigStd.Marshal(rows)
}

// Render substitutes every Marker in the template with rows and writes the
// result to outPath. Nothing is left at outPath if any step fails.
func Render(templatePath string, rows []stats.URLStat, outPath string) error {
	tpl, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if !bytes.Contains(tpl, []byte(Marker)) {
		return fmt.Errorf("%s: %w", templatePath, ErrMarkerMissing)
	}
	payload, err := Payload(rows)
	if err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	out, err := iox.CreateAtomic(outPath)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if _, err := out.Write(bytes.ReplaceAll(tpl, []byte(Marker), payload)); err != nil {
		_ = out.Abort()
		return fmt.Errorf("write report: %w", err)
	}
	if err := out.Commit(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
