// Package config loads the gridcalc TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ukaji3/gridcalc-go/pkg/gridcalc"
)

// File is the decoded configuration file. Zero values leave defaults in place.
type File struct {
	Grid   GridSection   `toml:"grid"`
	Log    LogSection    `toml:"log"`
	Server ServerSection `toml:"server"`
	Export ExportSection `toml:"export"`
}

// GridSection sizes the grid and its history.
type GridSection struct {
	Columns      int `toml:"columns"`
	Rows         int `toml:"rows"`
	HistoryLimit int `toml:"history_limit"`
	UndoLimit    int `toml:"undo_limit"`
}

// LogSection configures the CLI logger.
type LogSection struct {
	// Level is one of debug, info, warn or error.
	Level string `toml:"level"`
	// Format is text or json.
	Format string `toml:"format"`
}

// ServerSection configures the HTTP transport.
type ServerSection struct {
	Addr string `toml:"addr"`
}

// ExportSection configures xlsx export.
type ExportSection struct {
	SheetName string `toml:"sheet_name"`
}

// Load reads and decodes the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(path, data)
}

// LoadFromReader decodes configuration from r.
func LoadFromReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse("<reader>", data)
}

func parse(source string, data []byte) (*File, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}
	if err := f.Validate(); err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}
	return &f, nil
}

// Validate checks value ranges.
func (f *File) Validate() error {
	var errs []error
	if f.Grid.Columns < 0 || f.Grid.Rows < 0 {
		errs = append(errs, errors.New("grid size must not be negative"))
	}
	if f.Grid.HistoryLimit < 0 || f.Grid.UndoLimit < 0 {
		errs = append(errs, errors.New("history limits must not be negative"))
	}
	if _, err := parseLevel(f.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(f.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", f.Log.Format))
	}
	return errors.Join(errs...)
}

// Apply copies the set grid values onto opts.
func (f *File) Apply(opts *gridcalc.Options) {
	if f.Grid.Columns > 0 {
		opts.Columns = f.Grid.Columns
	}
	if f.Grid.Rows > 0 {
		opts.Rows = f.Grid.Rows
	}
	if f.Grid.HistoryLimit > 0 {
		opts.HistoryLimit = f.Grid.HistoryLimit
	}
	if f.Grid.UndoLimit > 0 {
		opts.UndoLimit = f.Grid.UndoLimit
	}
}

// LogLevel returns the configured level, info when unset.
func (f *File) LogLevel() slog.Level {
	level, _ := parseLevel(f.Log.Level)
	return level
}

// JSONLogs reports whether logs should be written as JSON.
func (f *File) JSONLogs() bool {
	return strings.EqualFold(f.Log.Format, "json")
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
