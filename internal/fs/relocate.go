package fs

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// EnsureDir creates dir and its parents. An existing directory, including
// one created concurrently, is success; anything else occupying the path is
// an error.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return fmt.Errorf("unable to create directory %v: %w", dir, err)
	}
	return nil
}

// Move renames src to dst, falling back to an atomic copy followed by
// removal of src when they live on different devices.
func Move(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return err
	}

	if err := Copy(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// Copy atomically writes src's content to dst and carries over permission
// bits, access and modification times.
func Copy(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := atomic.WriteFile(dst, bufio.NewReader(f)); err != nil {
		return fmt.Errorf("cannot atomically write %v: %w", dst, err)
	}

	return preserveMetadata(src, dst, info)
}

func preserveMetadata(src, dst string, info os.FileInfo) error {
	var errs []error
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		errs = append(errs, err)
	}
	if err := os.Chtimes(dst, accessTime(src, info), info.ModTime()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
