package core

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/fedragon/go-imgsift/internal/models"

	"go.uber.org/zap"
)

// Reporter writes one human-readable line per classification decision.
type Reporter struct {
	out    io.Writer
	logger *zap.Logger
}

func NewReporter(out io.Writer, logger *zap.Logger) *Reporter {
	return &Reporter{out: out, logger: logger}
}

func (r *Reporter) Report(res models.Result) {
	rec := res.Record

	switch res.State {
	case models.Qualified:
		r.printf("OK: %v %v\n", rec.Path, res.Ratio)
	case models.TooSmall:
		r.printf("Smaller than minimum resolution: %v (%dx%d)\n", rec.Path, rec.Width, rec.Height)
	case models.Unrecognized:
		r.printf("Unrecognized file signature: %v in %v\n", hex.EncodeToString(rec.Signature), rec.Path)
	case models.Unreadable, models.DimensionFailed, models.InvalidDimensions:
		r.printf("Skipped: %v: %v\n", rec.Path, res.Err)
	case models.RatioMismatch:
		r.logger.Debug("Aspect ratio not wanted", zap.String("path", rec.Path), zap.Stringer("ratio", res.Ratio))
	default:
		r.logger.Debug("No report for state", zap.String("path", rec.Path), zap.Stringer("state", res.State))
	}
}

func (r *Reporter) ReportAll(results []models.Result) {
	for _, res := range results {
		r.Report(res)
	}
}

func (r *Reporter) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		r.logger.Error("Cannot write report line", zap.Error(err))
	}
}
