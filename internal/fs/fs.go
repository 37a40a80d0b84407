package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fedragon/go-imgsift/internal/metrics"
	"github.com/fedragon/go-imgsift/internal/models"

	"go.uber.org/zap"
	"lukechampine.com/blake3"
)

// Walk emits every regular file under root, in lexical order. Paths the
// excluder matches are skipped; unreadable directories are reported as an
// Entry carrying models.ErrIO and skipped. The walk stops early when ctx is
// cancelled.
func Walk(ctx context.Context, logger *zap.Logger, mx *metrics.Metrics, root string, exclude *Excluder) <-chan models.Entry {
	entries := make(chan models.Entry)

	go func() {
		defer close(entries)

		emit := func(e models.Entry) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case entries <- e:
				return nil
			}
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == root {
					return err
				}
				_ = mx.Increment("walk.errors")
				if emitErr := emit(models.Entry{Path: path, Err: fmt.Errorf("%w: %v", models.ErrIO, err)}); emitErr != nil {
					return emitErr
				}
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if path != root && exclude.Match(path, d.IsDir()) {
				logger.Debug("Excluded path", zap.String("path", path))
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				return nil
			}

			if !d.Type().IsRegular() {
				logger.Debug("Skipping non-regular file", zap.String("path", path), zap.Stringer("type", d.Type()))
				return nil
			}

			_ = mx.Increment("walk.files")
			return emit(models.Entry{Path: path})
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			_ = emit(models.Entry{Path: root, Err: fmt.Errorf("%w: %v", models.ErrIO, err)})
		}
	}()

	return entries
}

// ReadPrefix reads at most n leading bytes of path. Files shorter than n
// yield a shorter prefix.
func ReadPrefix(path string, n int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrIO, err)
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %v", models.ErrIO, err)
	}

	return buf[:read], nil
}

func hash(mx *metrics.Metrics, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stop := mx.Record("hash")
	defer stop()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	return h.Sum(nil), nil
}

// SameContent reports whether a and b hold identical bytes. Sizes are
// compared before anything is hashed.
func SameContent(mx *metrics.Metrics, a, b string) (bool, error) {
	infoA, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	infoB, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if infoA.Size() != infoB.Size() {
		return false, nil
	}

	hashA, err := hash(mx, a)
	if err != nil {
		return false, err
	}
	hashB, err := hash(mx, b)
	if err != nil {
		return false, err
	}

	return string(hashA) == string(hashB), nil
}
