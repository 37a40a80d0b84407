// Package fixtures builds minimal image files for tests. Only headers are
// synthesized; the pixel data is absent, which is enough for header parsers.
package fixtures

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
)

func PNG(width, height int) []byte {
	var b bytes.Buffer
	b.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'})

	data := make([]byte, 13)
	binary.BigEndian.PutUint32(data[0:4], uint32(width))
	binary.BigEndian.PutUint32(data[4:8], uint32(height))
	data[8] = 8 // bit depth
	data[9] = 2 // truecolor

	_ = binary.Write(&b, binary.BigEndian, uint32(len(data)))
	chunk := append([]byte("IHDR"), data...)
	b.Write(chunk)
	_ = binary.Write(&b, binary.BigEndian, crc32.ChecksumIEEE(chunk))

	return b.Bytes()
}

// JPEG returns SOI, a JFIF APP0 segment and a single-component SOF0 segment.
func JPEG(width, height int) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8})
	b.Write([]byte{0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00})
	b.Write([]byte{0xFF, 0xC0, 0x00, 0x0B, 0x08})
	_ = binary.Write(&b, binary.BigEndian, uint16(height))
	_ = binary.Write(&b, binary.BigEndian, uint16(width))
	b.Write([]byte{0x01, 0x01, 0x11, 0x00})
	b.Write([]byte{0xFF, 0xD9})

	return b.Bytes()
}

func GIF(width, height int) []byte {
	var b bytes.Buffer
	b.WriteString("GIF89a")
	_ = binary.Write(&b, binary.LittleEndian, uint16(width))
	_ = binary.Write(&b, binary.LittleEndian, uint16(height))
	b.Write([]byte{0x00, 0x00, 0x00})

	return b.Bytes()
}

// Write creates path (and its parents) with data and returns path.
func Write(tb testing.TB, path string, data []byte) string {
	tb.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		tb.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatal(err)
	}

	return path
}
