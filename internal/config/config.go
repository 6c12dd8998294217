package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Recognized keys, shared by config files and environment variables.
const (
	KeyReportSize     = "REPORT_SIZE"
	KeyReportDir      = "REPORT_DIR"
	KeyLogDir         = "LOG_DIR"
	KeyLogFile        = "LOGGING_LOG_FILENAME"
	KeyErrorThreshold = "ERRORS_THRSLD_QTY"
	KeyTemplate       = "REPORT_TEMPLATE"
)

var knownKeys = map[string]struct{}{
	KeyReportSize:     {},
	KeyReportDir:      {},
	KeyLogDir:         {},
	KeyLogFile:        {},
	KeyErrorThreshold: {},
	KeyTemplate:       {},
}

var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
	ErrBadFormat    = errors.New("unreadable config file")
)

// Error ties a failure to the offending key (empty for file-level errors).
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Config is built once by Load and passed by value.
type Config struct {
	ReportSize     int    // max URLs in the report, 0 = all
	ReportDir      string
	LogDir         string
	LogFile        string // "" = stderr
	ErrorThreshold int    // malformed lines before aborting, 0 = never
	Template       string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ReportSize: 1000,
		ReportDir:  "./reports",
		LogDir:     "./log",
		Template:   "./report.html",
	}
}

// dotenvPath is the optional dotenv file read by Load.
var dotenvPath = ".env"

// fileConfig mirrors Config with pointers so absent keys keep their defaults.
type fileConfig struct {
	ReportSize     *int    `json:"REPORT_SIZE" yaml:"REPORT_SIZE"`
	ReportDir      *string `json:"REPORT_DIR" yaml:"REPORT_DIR"`
	LogDir         *string `json:"LOG_DIR" yaml:"LOG_DIR"`
	LogFile        *string `json:"LOGGING_LOG_FILENAME" yaml:"LOGGING_LOG_FILENAME"`
	ErrorThreshold *int    `json:"ERRORS_THRSLD_QTY" yaml:"ERRORS_THRSLD_QTY"`
	Template       *string `json:"REPORT_TEMPLATE" yaml:"REPORT_TEMPLATE"`
}

// Load builds the configuration: defaults, then the file at path (JSON, or
// YAML for .yaml/.yml; skipped when path is ""), then environment variables
// named like the keys (a .env file in the working directory is read first if
// present).
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fc.apply(cfg)
	}

	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, &Error{Err: fmt.Errorf("%w: %s: %v", ErrBadFormat, dotenvPath, err)}
	}
	cfg, err := applyEnv(cfg)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("%w: %v", ErrBadFormat, err)}
	}

	var (
		raw map[string]any
		fc  fileConfig
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, &Error{Err: fmt.Errorf("%w: %v", ErrBadFormat, err)}
		}
		if err := checkKeys(raw); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return nil, &Error{Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
		}
	default:
		if err := sonic.Unmarshal(b, &raw); err != nil {
			return nil, &Error{Err: fmt.Errorf("%w: %v", ErrBadFormat, err)}
		}
		if err := checkKeys(raw); err != nil {
			return nil, err
		}
		if err := sonic.Unmarshal(b, &fc); err != nil {
			return nil, &Error{Err: fmt.Errorf("%w: %v", ErrInvalidValue, err)}
		}
	}
	return &fc, nil
}

func checkKeys(raw map[string]any) error {
	var unknown []string
	for k := range raw {
		if _, ok := knownKeys[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &Error{Key: unknown[0], Err: ErrUnknownKey}
}

func (fc *fileConfig) apply(cfg Config) Config {
	if fc.ReportSize != nil {
		cfg.ReportSize = *fc.ReportSize
	}
	if fc.ReportDir != nil {
		cfg.ReportDir = *fc.ReportDir
	}
	if fc.LogDir != nil {
		cfg.LogDir = *fc.LogDir
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.ErrorThreshold != nil {
		cfg.ErrorThreshold = *fc.ErrorThreshold
	}
	if fc.Template != nil {
		cfg.Template = *fc.Template
	}
	return cfg
}

func applyEnv(cfg Config) (Config, error) {
	var err error
	if cfg.ReportSize, err = getenvInt(KeyReportSize, cfg.ReportSize); err != nil {
		return Config{}, err
	}
	if cfg.ErrorThreshold, err = getenvInt(KeyErrorThreshold, cfg.ErrorThreshold); err != nil {
		return Config{}, err
	}
	cfg.ReportDir = getenv(KeyReportDir, cfg.ReportDir)
	cfg.LogDir = getenv(KeyLogDir, cfg.LogDir)
	cfg.LogFile = getenv(KeyLogFile, cfg.LogFile)
	cfg.Template = getenv(KeyTemplate, cfg.Template)
	return cfg, nil
}

// Validate rejects negative limits and empty paths.
func (c Config) Validate() error {
	switch {
	case c.ReportSize < 0:
		return &Error{Key: KeyReportSize, Err: fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidValue, c.ReportSize)}
	case c.ErrorThreshold < 0:
		return &Error{Key: KeyErrorThreshold, Err: fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidValue, c.ErrorThreshold)}
	case strings.TrimSpace(c.ReportDir) == "":
		return &Error{Key: KeyReportDir, Err: fmt.Errorf("%w: empty", ErrInvalidValue)}
	case strings.TrimSpace(c.LogDir) == "":
		return &Error{Key: KeyLogDir, Err: fmt.Errorf("%w: empty", ErrInvalidValue)}
	case strings.TrimSpace(c.Template) == "":
		return &Error{Key: KeyTemplate, Err: fmt.Errorf("%w: empty", ErrInvalidValue)}
	}
	return nil
}

// ParseThreshold parses a command-line threshold value.
func ParseThreshold(s string) (int, error) { return parseCount(KeyErrorThreshold, s) }

// ParseReportSize parses a command-line report size.
func ParseReportSize(s string) (int, error) { return parseCount(KeyReportSize, s) }

func parseCount(key, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: %q", ErrInvalidValue, s)}
	}
	return n, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, &Error{Key: key, Err: fmt.Errorf("%w: %q", ErrInvalidValue, v)}
	}
	return n, nil
}
