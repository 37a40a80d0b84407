package media

import (
	"testing"

	"github.com/fedragon/go-imgsift/internal/fixtures"
	"github.com/fedragon/go-imgsift/internal/models"
)

func TestClassify(t *testing.T) {
	sniffer := NewSniffer(DefaultSignatures())

	cases := []struct {
		name     string
		prefix   []byte
		expected models.Format
	}{
		{name: "jpeg magic", prefix: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}, expected: models.JPEG},
		{name: "png magic", prefix: fixtures.PNG(1, 1)[:16], expected: models.PNG},
		{name: "gif89a magic", prefix: []byte("GIF89a\x01\x00\x01\x00"), expected: models.GIF},
		{name: "gif87a magic", prefix: []byte("GIF87a\x01\x00\x01\x00"), expected: models.GIF},
		{name: "webp is riff with a webp fourcc", prefix: []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), expected: models.WEBP},
		{name: "riff without webp is unknown", prefix: []byte("RIFF\x24\x00\x00\x00WAVEfmt "), expected: models.Unknown},
		{name: "little endian tiff", prefix: []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00}, expected: models.TIFF},
		{name: "big endian tiff", prefix: []byte{'M', 'M', 0x00, 0x2A, 0x00, 0x08}, expected: models.TIFF},
		{name: "bmp magic", prefix: []byte("BM\x36\x00\x0c\x00"), expected: models.BMP},
		{name: "plain text is unknown", prefix: []byte("hello, world\n"), expected: models.Unknown},
		{name: "single byte of a jpeg magic is unknown", prefix: []byte{0xFF}, expected: models.Unknown},
		{name: "empty prefix is unknown", prefix: nil, expected: models.Unknown},
		{name: "truncated png magic is unknown", prefix: []byte{0x89, 'P', 'N', 'G'}, expected: models.Unknown},
	}

	for _, c := range cases {
		if got := sniffer.Classify(c.prefix); got != c.expected {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.expected, got)
		}
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	sniffer := NewSniffer([]models.SignaturePattern{
		{Format: models.JPEG, Runs: []models.Magic{{Offset: 0, Bytes: []byte{0xFF}}}},
		{Format: models.PNG, Runs: []models.Magic{{Offset: 0, Bytes: []byte{0xFF, 0xD8}}}},
	})

	if got := sniffer.Classify([]byte{0xFF, 0xD8}); got != models.JPEG {
		t.Errorf("Expected %v but got %v instead", models.JPEG, got)
	}
}
