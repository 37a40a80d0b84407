package core

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fedragon/go-imgsift/internal/fs"
	"github.com/fedragon/go-imgsift/internal/media"
	"github.com/fedragon/go-imgsift/internal/metrics"
	"github.com/fedragon/go-imgsift/internal/models"

	"go.uber.org/zap"
)

type SignatureGroup struct {
	Signature []byte
	Format    models.Format
	Paths     []string
}

type SignatureLister struct {
	Sniffer *media.Sniffer
	Exclude *fs.Excluder
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// List groups every file under root by its leading bytes. Groups are
// ordered by byte value and paths lexicographically.
func (sl *SignatureLister) List(ctx context.Context, root string) []SignatureGroup {
	groups := make(map[string]*SignatureGroup)

	for e := range fs.Walk(ctx, sl.Logger, sl.Metrics, root, sl.Exclude) {
		if e.Err != nil {
			sl.Logger.Warn("Skipping unreadable path", zap.String("path", e.Path), zap.Error(e.Err))
			continue
		}

		prefix, err := fs.ReadPrefix(e.Path, media.SignatureSize)
		if err != nil {
			sl.Logger.Warn("Skipping unreadable file", zap.String("path", e.Path), zap.Error(err))
			continue
		}

		g, ok := groups[string(prefix)]
		if !ok {
			g = &SignatureGroup{Signature: prefix, Format: sl.Sniffer.Classify(prefix)}
			groups[string(prefix)] = g
		}
		g.Paths = append(g.Paths, e.Path)
	}

	out := make([]SignatureGroup, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.Paths)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i].Signature, out[j].Signature) < 0 })

	return out
}

func WriteSignatureGroups(w io.Writer, groups []SignatureGroup) error {
	rule := strings.Repeat("-", 40)

	for _, g := range groups {
		sig := hex.EncodeToString(g.Signature)
		if sig == "" {
			sig = "(empty)"
		}
		if _, err := fmt.Fprintf(w, "%v [%v] (%d entries):\n", sig, g.Format, len(g.Paths)); err != nil {
			return err
		}
		for _, p := range g.Paths {
			if _, err := fmt.Fprintln(w, p); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, rule); err != nil {
			return err
		}
	}

	return nil
}
