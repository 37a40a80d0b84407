package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fedragon/go-imgsift/internal/models"
)

func TestNew(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	opts := DefaultOptions()
	opts.Source = src
	opts.Destination = dst

	cfg, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Mode != Relocate {
		t.Errorf("Expected mode %v but got %v instead", Relocate, cfg.Mode)
	}
	if cfg.Operation != models.Move {
		t.Errorf("Expected operation %v but got %v instead", models.Move, cfg.Operation)
	}
	if cfg.Threshold != (models.Threshold{MinWidth: 1920, MinHeight: 1080}) {
		t.Errorf("Unexpected threshold %+v", cfg.Threshold)
	}
	if len(cfg.Aspects) != 1 || !cfg.Aspects.Contains(models.AspectRatio{Width: 16, Height: 9}) {
		t.Errorf("Expected default aspect 16:9 but got %v instead", cfg.Aspects.Sorted())
	}
	if cfg.Destination != dst {
		t.Errorf("Expected destination %v but got %v instead", dst, cfg.Destination)
	}
	if len(cfg.Signatures) == 0 {
		t.Errorf("Expected a signature table")
	}
}

func TestNewCopyAndAspects(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = t.TempDir()
	opts.Destination = t.TempDir()
	opts.CopyOnly = true
	opts.Aspects = []string{"16:10 32:9", "21:9"}

	cfg, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Operation != models.Copy {
		t.Errorf("Expected operation %v but got %v instead", models.Copy, cfg.Operation)
	}
	expected := []models.AspectRatio{{Width: 7, Height: 3}, {Width: 8, Height: 5}, {Width: 32, Height: 9}}
	got := cfg.Aspects.Sorted()
	if len(got) != len(expected) {
		t.Fatalf("Expected %v but got %v instead", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %v but got %v instead", expected, got)
		}
	}
}

func TestNewInvalid(t *testing.T) {
	src := t.TempDir()
	file := filepath.Join(src, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name  string
		apply func(*Options)
	}{
		{name: "neither mode selected", apply: func(o *Options) { o.Destination = "" }},
		{name: "both modes selected", apply: func(o *Options) { o.ListSignatures = true }},
		{name: "missing source", apply: func(o *Options) { o.Source = "" }},
		{name: "source does not exist", apply: func(o *Options) { o.Source = filepath.Join(src, "nope") }},
		{name: "source is a file", apply: func(o *Options) { o.Source = file }},
		{name: "destination is a file", apply: func(o *Options) { o.Destination = file }},
		{name: "destination equals source", apply: func(o *Options) { o.Destination = src }},
		{name: "malformed aspect", apply: func(o *Options) { o.Aspects = []string{"foo"} }},
		{name: "one malformed aspect among many", apply: func(o *Options) { o.Aspects = []string{"16:9", "4/3"} }},
		{name: "empty aspect list", apply: func(o *Options) { o.Aspects = nil }},
		{name: "negative minimum width", apply: func(o *Options) { o.MinWidth = -1 }},
		{name: "zero workers", apply: func(o *Options) { o.Workers = 0 }},
	}

	for _, c := range cases {
		opts := DefaultOptions()
		opts.Source = src
		opts.Destination = filepath.Join(t.TempDir(), "out")
		c.apply(&opts)

		if _, err := New(opts); !errors.Is(err, models.ErrInvalidConfig) {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, models.ErrInvalidConfig, err)
		}
	}
}

func TestNewListSignatures(t *testing.T) {
	opts := DefaultOptions()
	opts.Source = t.TempDir()
	opts.ListSignatures = true

	cfg, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != ListSignatures {
		t.Errorf("Expected mode %v but got %v instead", ListSignatures, cfg.Mode)
	}
	if cfg.Destination != "" {
		t.Errorf("Expected no destination but got %v instead", cfg.Destination)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imgsift.toml")
	content := `
min_width = 2560
aspect = ["21:9", "32:9"]
copy_only = true
exclude = ["*.tmp"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions().Apply(f)
	if opts.MinWidth != 2560 {
		t.Errorf("Expected %v but got %v instead", 2560, opts.MinWidth)
	}
	if opts.MinHeight != DefaultMinHeight {
		t.Errorf("Expected unset key to keep default %v but got %v instead", DefaultMinHeight, opts.MinHeight)
	}
	if len(opts.Aspects) != 2 || opts.Aspects[0] != "21:9" {
		t.Errorf("Unexpected aspects %v", opts.Aspects)
	}
	if !opts.CopyOnly {
		t.Errorf("Expected copy_only to be set")
	}
	if len(opts.Exclude) != 1 || opts.Exclude[0] != "*.tmp" {
		t.Errorf("Unexpected exclude patterns %v", opts.Exclude)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte("colour = \"red\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("min_width = = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{unknown, broken, filepath.Join(dir, "missing.toml")} {
		if _, err := Load(path); !errors.Is(err, models.ErrInvalidConfig) {
			t.Errorf("%v\n\tExpected %v but got %v instead", path, models.ErrInvalidConfig, err)
		}
	}
}
