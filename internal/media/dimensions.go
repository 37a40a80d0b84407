package media

import (
	"bufio"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/fedragon/go-imgsift/internal/models"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// MaxHeaderBytes caps how much of a file a header parser may consume.
const MaxHeaderBytes = 16 << 20

var configDecoders = map[models.Format]func(io.Reader) (image.Config, error){
	models.JPEG: jpeg.DecodeConfig,
	models.PNG:  png.DecodeConfig,
	models.GIF:  gif.DecodeConfig,
	models.WEBP: webp.DecodeConfig,
	models.BMP:  bmp.DecodeConfig,
	models.TIFF: tiff.DecodeConfig,
}

// Dimensions reads width and height from the image header without decoding
// pixel data.
func Dimensions(path string, format models.Format) (int, int, error) {
	decode, ok := configDecoders[format]
	if !ok {
		return 0, 0, fmt.Errorf("%w: no header parser for format %v", models.ErrCorruptImage, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	defer f.Close()

	cfg, err := decode(bufio.NewReader(io.LimitReader(f, MaxHeaderBytes)))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v: %v", models.ErrCorruptImage, format, err)
	}

	return cfg.Width, cfg.Height, nil
}
