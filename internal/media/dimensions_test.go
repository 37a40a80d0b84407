package media

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/fedragon/go-imgsift/internal/fixtures"
	"github.com/fedragon/go-imgsift/internal/models"
)

func TestDimensions(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name   string
		path   string
		format models.Format
		width  int
		height int
	}{
		{
			name:   "png header",
			path:   fixtures.Write(t, filepath.Join(dir, "a.png"), fixtures.PNG(3840, 2160)),
			format: models.PNG,
			width:  3840,
			height: 2160,
		},
		{
			name:   "jpeg header",
			path:   fixtures.Write(t, filepath.Join(dir, "b.jpg"), fixtures.JPEG(1920, 1080)),
			format: models.JPEG,
			width:  1920,
			height: 1080,
		},
		{
			name:   "gif header",
			path:   fixtures.Write(t, filepath.Join(dir, "c.gif"), fixtures.GIF(640, 480)),
			format: models.GIF,
			width:  640,
			height: 480,
		},
	}

	for _, c := range cases {
		w, h, err := Dimensions(c.path, c.format)
		if err != nil {
			t.Errorf("%v\n\tunexpected error: %v", c.name, err)
			continue
		}
		if w != c.width || h != c.height {
			t.Errorf("%v\n\tExpected %dx%d but got %dx%d instead", c.name, c.width, c.height, w, h)
		}
	}
}

func TestDimensionsFailures(t *testing.T) {
	dir := t.TempDir()

	truncatedPNG := fixtures.PNG(1920, 1080)[:20]

	cases := []struct {
		name   string
		path   string
		format models.Format
		err    error
	}{
		{
			name:   "truncated png is corrupt",
			path:   fixtures.Write(t, filepath.Join(dir, "short.png"), truncatedPNG),
			format: models.PNG,
			err:    models.ErrCorruptImage,
		},
		{
			name:   "jpeg magic followed by garbage is corrupt",
			path:   fixtures.Write(t, filepath.Join(dir, "garbage.jpg"), []byte{0xFF, 0xD8, 0x00, 0x01, 0x02}),
			format: models.JPEG,
			err:    models.ErrCorruptImage,
		},
		{
			name:   "unknown format has no parser",
			path:   fixtures.Write(t, filepath.Join(dir, "note.txt"), []byte("text")),
			format: models.Unknown,
			err:    models.ErrCorruptImage,
		},
		{
			name:   "missing file is an io error",
			path:   filepath.Join(dir, "missing.png"),
			format: models.PNG,
			err:    models.ErrIO,
		},
	}

	for _, c := range cases {
		if _, _, err := Dimensions(c.path, c.format); !errors.Is(err, c.err) {
			t.Errorf("%v\n\tExpected %v but got %v instead", c.name, c.err, err)
		}
	}
}
