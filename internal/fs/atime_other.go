//go:build !linux

package fs

import (
	"os"
	"time"
)

func accessTime(_ string, info os.FileInfo) time.Time {
	return info.ModTime()
}
