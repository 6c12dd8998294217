package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loganalyzer/internal/aggregate"
	"loganalyzer/internal/config"
	"loganalyzer/internal/locator"
	"loganalyzer/internal/logx"
	"loganalyzer/internal/report"
	"loganalyzer/internal/stats"
)

var version = "v1.0"

func main() {
	configPath := flag.String("config", "", "Path to config file (.json, .yaml or .yml)")
	threshold := flag.String("errors-threshold", "", "Abort after this many malformed lines (0 = never); overrides ERRORS_THRSLD_QTY")
	reportSize := flag.String("report-size", "", "Max URLs in the report (0 = all); overrides REPORT_SIZE")
	logLevel := flag.String("log-level", "info", "Log level: debug | info | warn | error")
	showPlan := flag.Bool("plan", false, "Show resolved configuration and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *threshold, *reportSize)
	if err != nil {
		logx.Fatalf("%v", err)
	}

	closer, err := logx.Setup(cfg.LogFile)
	if err != nil {
		logx.Fatalf("%v", err)
	}
	defer closer.Close()
	if !logx.SetLevel(*logLevel) {
		logx.Warnf("unknown log level %q, keeping info", *logLevel)
	}

	if *showPlan {
		printPlan(cfg)
		return
	}

	start := time.Now()
	out, err := run(cfg)
	if err != nil {
		logx.Errorf("%v", err)
		closer.Close()
		os.Exit(1)
	}
	if out != "" {
		logx.Infof("report written to %s", out)
	}
	logx.Infof("completed in %v", time.Since(start))
}

// loadConfig applies non-empty flag values on top of config.Load.
func loadConfig(path, threshold, reportSize string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if threshold != "" {
		n, err := config.ParseThreshold(threshold)
		if err != nil {
			return config.Config{}, err
		}
		cfg.ErrorThreshold = n
	}
	if reportSize != "" {
		n, err := config.ParseReportSize(reportSize)
		if err != nil {
			return config.Config{}, err
		}
		cfg.ReportSize = n
	}
	return cfg, nil
}

func printPlan(cfg config.Config) {
	fmt.Printf("==== Log analyzer %s plan ====\n", version)
	fmt.Printf("Log dir            : %s\n", cfg.LogDir)
	fmt.Printf("Report dir         : %s\n", cfg.ReportDir)
	fmt.Printf("Report size        : %d\n", cfg.ReportSize)
	fmt.Printf("Template           : %s\n", cfg.Template)
	fmt.Printf("Errors threshold   : %d\n", cfg.ErrorThreshold)
	fmt.Printf("Log file           : %s\n", cfg.LogFile)
}

// run processes the newest log in cfg.LogDir. It returns the written report
// path, or "" when there was nothing to do (no logs, report already present).
func run(cfg config.Config) (string, error) {
	logx.Infof("config: log_dir=%s report_dir=%s report_size=%d errors_threshold=%d",
		cfg.LogDir, cfg.ReportDir, cfg.ReportSize, cfg.ErrorThreshold)

	lf, err := locator.Locate(cfg.LogDir)
	if errors.Is(err, locator.ErrNoLogDir) {
		logx.Warnf("%v", err)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if lf == nil {
		logx.Warnf("no logs found in %s", cfg.LogDir)
		return "", nil
	}
	logx.Infof("most recent log: %s (day %s, compressed=%t)", lf.Name, lf.Time().Format("2006-01-02"), lf.Compressed())

	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	name := report.Name(lf.Date)
	exists, err := report.Exists(cfg.ReportDir, name)
	if err != nil {
		return "", fmt.Errorf("check report: %w", err)
	}
	if exists {
		logx.Warnf("report %s already exists, nothing to do", name)
		return "", nil
	}
	if _, err := os.Stat(cfg.Template); err != nil {
		return "", fmt.Errorf("template: %w", err)
	}

	table, c, err := aggregate.AggregateFile(lf.Path(cfg.LogDir), aggregate.Options{
		ErrorThreshold: cfg.ErrorThreshold,
		Progress: func(c aggregate.Counters) {
			logx.Debugf("parse progress: lines=%d parsed=%d malformed=%d", c.Lines, c.Parsed, c.Malformed)
		},
	})
	if err != nil {
		return "", err
	}
	logx.Infof("parse done: lines=%d parsed=%d malformed=%d urls=%d samples=%d", c.Lines, c.Parsed, c.Malformed, table.Len(), table.Samples())
	if c.Malformed > 0 {
		logx.Warnf("%d malformed lines skipped", c.Malformed)
	}

	rows := stats.Reduce(table, cfg.ReportSize)
	out := filepath.Join(cfg.ReportDir, name)
	if err := report.Render(cfg.Template, rows, out); err != nil {
		return "", err
	}
	return out, nil
}
