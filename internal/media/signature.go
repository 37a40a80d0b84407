package media

import (
	"bytes"

	"github.com/fedragon/go-imgsift/internal/models"
)

// SignatureSize is the number of leading bytes read from every file.
const SignatureSize = 16

// DefaultSignatures is checked in order; the first matching pattern wins.
func DefaultSignatures() []models.SignaturePattern {
	return []models.SignaturePattern{
		{Format: models.JPEG, Runs: []models.Magic{{Offset: 0, Bytes: []byte{0xFF, 0xD8}}}},
		{Format: models.PNG, Runs: []models.Magic{{Offset: 0, Bytes: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A}}}},
		{Format: models.GIF, Runs: []models.Magic{{Offset: 0, Bytes: []byte("GIF87a")}}},
		{Format: models.GIF, Runs: []models.Magic{{Offset: 0, Bytes: []byte("GIF89a")}}},
		{Format: models.WEBP, Runs: []models.Magic{
			{Offset: 0, Bytes: []byte("RIFF")},
			{Offset: 8, Bytes: []byte("WEBP")},
		}},
		{Format: models.TIFF, Runs: []models.Magic{{Offset: 0, Bytes: []byte{'I', 'I', 0x2A, 0x00}}}},
		{Format: models.TIFF, Runs: []models.Magic{{Offset: 0, Bytes: []byte{'M', 'M', 0x00, 0x2A}}}},
		{Format: models.BMP, Runs: []models.Magic{{Offset: 0, Bytes: []byte("BM")}}},
	}
}

type Sniffer struct {
	patterns []models.SignaturePattern
}

func NewSniffer(patterns []models.SignaturePattern) *Sniffer {
	cp := make([]models.SignaturePattern, len(patterns))
	copy(cp, patterns)
	return &Sniffer{patterns: cp}
}

// Classify returns the format of the first pattern matching prefix, or
// models.Unknown.
func (s *Sniffer) Classify(prefix []byte) models.Format {
	for _, p := range s.patterns {
		if matches(prefix, p) {
			return p.Format
		}
	}
	return models.Unknown
}

func matches(prefix []byte, p models.SignaturePattern) bool {
	if len(p.Runs) == 0 {
		return false
	}
	for _, run := range p.Runs {
		end := run.Offset + len(run.Bytes)
		if run.Offset < 0 || end > len(prefix) {
			return false
		}
		if !bytes.Equal(prefix[run.Offset:end], run.Bytes) {
			return false
		}
	}
	return true
}
