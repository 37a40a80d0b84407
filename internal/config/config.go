package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fedragon/go-imgsift/internal/media"
	"github.com/fedragon/go-imgsift/internal/models"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultMinWidth  = 1920
	DefaultMinHeight = 1080
	DefaultAspect    = "16:9"
)

type Mode int

const (
	Relocate Mode = iota
	ListSignatures
)

// Config is built once per run by New and is not modified afterwards.
type Config struct {
	Source      string
	Destination string
	Mode        Mode
	Operation   models.Operation
	Threshold   models.Threshold
	Aspects     models.RatioSet
	Exclude     []string
	Workers     int
	DryRun      bool
	Signatures  []models.SignaturePattern
}

// File mirrors the optional TOML configuration file. Unset keys keep their
// defaults.
type File struct {
	MinWidth  *int     `toml:"min_width"`
	MinHeight *int     `toml:"min_height"`
	Aspect    []string `toml:"aspect"`
	CopyOnly  *bool    `toml:"copy_only"`
	Exclude   []string `toml:"exclude"`
	Workers   *int     `toml:"workers"`
}

// Options holds raw, unvalidated settings as collected from the command
// line and an optional config file.
type Options struct {
	Source         string
	Destination    string
	ListSignatures bool
	MinWidth       int
	MinHeight      int
	Aspects        []string
	CopyOnly       bool
	Exclude        []string
	Workers        int
	DryRun         bool
}

func DefaultOptions() Options {
	return Options{
		MinWidth:  DefaultMinWidth,
		MinHeight: DefaultMinHeight,
		Aspects:   []string{DefaultAspect},
		Workers:   runtime.NumCPU(),
	}
}

// Apply overlays the values set in f.
func (o Options) Apply(f File) Options {
	if f.MinWidth != nil {
		o.MinWidth = *f.MinWidth
	}
	if f.MinHeight != nil {
		o.MinHeight = *f.MinHeight
	}
	if len(f.Aspect) > 0 {
		o.Aspects = append([]string(nil), f.Aspect...)
	}
	if f.CopyOnly != nil {
		o.CopyOnly = *f.CopyOnly
	}
	if len(f.Exclude) > 0 {
		o.Exclude = append([]string(nil), f.Exclude...)
	}
	if f.Workers != nil {
		o.Workers = *f.Workers
	}
	return o
}

// Load decodes the TOML file at path.
func Load(path string) (File, error) {
	var f File

	expanded, err := homedir.Expand(path)
	if err != nil {
		return f, fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}

	file, err := os.Open(expanded)
	if err != nil {
		return f, fmt.Errorf("%w: open config: %v", models.ErrInvalidConfig, err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&f); err != nil {
		return f, fmt.Errorf("%w: parse config %v: %v", models.ErrInvalidConfig, expanded, err)
	}

	return f, nil
}

// New validates opts and returns the run configuration. Every error wraps
// models.ErrInvalidConfig.
func New(opts Options) (*Config, error) {
	if opts.ListSignatures == (opts.Destination != "") {
		return nil, fmt.Errorf("%w: exactly one of a destination or signature listing must be selected", models.ErrInvalidConfig)
	}
	if strings.TrimSpace(opts.Source) == "" {
		return nil, fmt.Errorf("%w: source directory is required", models.ErrInvalidConfig)
	}

	src, err := resolveDir(opts.Source)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(src); err != nil {
		return nil, fmt.Errorf("%w: source %v: %v", models.ErrInvalidConfig, src, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%w: source %v is not a directory", models.ErrInvalidConfig, src)
	}

	cfg := &Config{
		Source:     src,
		Mode:       Relocate,
		Operation:  models.Move,
		Exclude:    append([]string(nil), opts.Exclude...),
		Workers:    opts.Workers,
		DryRun:     opts.DryRun,
		Signatures: media.DefaultSignatures(),
	}

	if opts.MinWidth < 0 || opts.MinHeight < 0 {
		return nil, fmt.Errorf("%w: minimum resolution must not be negative", models.ErrInvalidConfig)
	}
	cfg.Threshold = models.Threshold{MinWidth: opts.MinWidth, MinHeight: opts.MinHeight}

	if cfg.Aspects, err = media.ParseRatios(splitList(opts.Aspects)); err != nil {
		return nil, err
	}

	if cfg.Workers < 1 {
		return nil, fmt.Errorf("%w: workers must be at least 1", models.ErrInvalidConfig)
	}

	if opts.ListSignatures {
		cfg.Mode = ListSignatures
		return cfg, nil
	}

	if cfg.Destination, err = resolveDir(opts.Destination); err != nil {
		return nil, err
	}
	if cfg.Destination == cfg.Source {
		return nil, fmt.Errorf("%w: destination must differ from source", models.ErrInvalidConfig)
	}
	if info, err := os.Stat(cfg.Destination); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: destination %v is not a directory", models.ErrInvalidConfig, cfg.Destination)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: destination %v: %v", models.ErrInvalidConfig, cfg.Destination, err)
	}

	if opts.CopyOnly {
		cfg.Operation = models.Copy
	}

	return cfg, nil
}

func resolveDir(path string) (string, error) {
	expanded, err := homedir.Expand(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	return abs, nil
}

// splitList accepts both repeated values and space separated ones
// ("16:9 21:9"), as a shell user might quote them.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}
