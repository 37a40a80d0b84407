package models

import (
	"fmt"
	"sort"
)

type Format string

const (
	Unknown Format = ""
	JPEG    Format = "jpeg"
	PNG     Format = "png"
	GIF     Format = "gif"
	WEBP    Format = "webp"
	BMP     Format = "bmp"
	TIFF    Format = "tiff"
)

func (f Format) String() string {
	if f == Unknown {
		return "unknown"
	}
	return string(f)
}

// Magic is a run of bytes expected at Offset within a file's prefix.
type Magic struct {
	Offset int
	Bytes  []byte
}

// SignaturePattern identifies Format when every one of its runs matches.
type SignaturePattern struct {
	Format Format
	Runs   []Magic
}

// FileRecord is created once per traversed file and never mutated after
// classification.
type FileRecord struct {
	Path      string
	Signature []byte
	Format    Format
	Width     int
	Height    int
}

type AspectRatio struct {
	Width  int
	Height int
}

func (r AspectRatio) String() string {
	return fmt.Sprintf("%d:%d", r.Width, r.Height)
}

type RatioSet map[AspectRatio]struct{}

func NewRatioSet(ratios ...AspectRatio) RatioSet {
	set := make(RatioSet, len(ratios))
	for _, r := range ratios {
		set[r] = struct{}{}
	}
	return set
}

func (s RatioSet) Contains(r AspectRatio) bool {
	_, ok := s[r]
	return ok
}

// Sorted returns the ratios ordered by width, then height.
func (s RatioSet) Sorted() []AspectRatio {
	out := make([]AspectRatio, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Width != out[j].Width {
			return out[i].Width < out[j].Width
		}
		return out[i].Height < out[j].Height
	})
	return out
}

type Threshold struct {
	MinWidth  int
	MinHeight int
}

type Operation string

const (
	Move Operation = "move"
	Copy Operation = "copy"
)

type RelocationPlan struct {
	Source      string
	Destination string
	Operation   Operation
}

type State int

const (
	Unreadable State = iota
	Unrecognized
	DimensionFailed
	InvalidDimensions
	RatioMismatch
	TooSmall
	Qualified
	Planned
	Relocated
	AlreadyRelocated
	RelocationFailed
)

var stateNames = map[State]string{
	Unreadable:        "unreadable",
	Unrecognized:      "unrecognized",
	DimensionFailed:   "dimension_failed",
	InvalidDimensions: "invalid_dimensions",
	RatioMismatch:     "ratio_mismatch",
	TooSmall:          "too_small",
	Qualified:         "qualified",
	Planned:           "planned",
	Relocated:         "relocated",
	AlreadyRelocated:  "already_relocated",
	RelocationFailed:  "relocation_failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result is the outcome of classifying a single file.
type Result struct {
	Record FileRecord
	State  State
	Ratio  AspectRatio
	Err    error
}

// Entry is produced by the directory walk.
type Entry struct {
	Path string
	Err  error
}
