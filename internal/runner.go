package internal

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fedragon/go-imgsift/internal/config"
	"github.com/fedragon/go-imgsift/internal/core"
	"github.com/fedragon/go-imgsift/internal/fs"
	"github.com/fedragon/go-imgsift/internal/media"
	"github.com/fedragon/go-imgsift/internal/metrics"
	"github.com/fedragon/go-imgsift/internal/models"

	"go.uber.org/zap"
)

type Runner struct {
	logger  *zap.Logger
	cfg     *config.Config
	out     io.Writer
	summary io.Writer
	metrics *metrics.Metrics
}

// NewRunner wires a run: decisions go to out, the metrics table to summary
// (nil disables it).
func NewRunner(logger *zap.Logger, cfg *config.Config, out io.Writer, summary io.Writer) *Runner {
	return &Runner{
		logger:  logger,
		cfg:     cfg,
		out:     out,
		summary: summary,
		metrics: metrics.NewMetrics(),
	}
}

func (r *Runner) Metrics() *metrics.Metrics {
	return r.metrics
}

func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		r.logger.Info("Elapsed time", zap.Duration("elapsed", time.Since(start)))
		if r.summary != nil {
			fmt.Fprintln(r.summary, r.metrics.Render())
		}
	}()

	exclude := fs.NewExcluder(r.cfg.Source, r.cfg.Exclude, r.cfg.Destination)

	if r.cfg.Mode == config.ListSignatures {
		lister := &core.SignatureLister{
			Sniffer: media.NewSniffer(r.cfg.Signatures),
			Exclude: exclude,
			Logger:  r.logger,
			Metrics: r.metrics,
		}
		return core.WriteSignatureGroups(r.out, lister.List(ctx, r.cfg.Source))
	}

	if r.cfg.DryRun {
		r.logger.Info("Running in DRY-RUN mode: matching files will not be relocated")
	}

	scanner := &core.ConcurrentScanner{
		Classifier: core.NewClassifier(r.cfg.Signatures, r.cfg.Aspects, r.cfg.Threshold),
		Exclude:    exclude,
		NumWorkers: r.cfg.Workers,
		Logger:     r.logger,
		Metrics:    r.metrics,
	}
	results := scanner.Scan(ctx, r.cfg.Source)
	if err := ctx.Err(); err != nil {
		return err
	}

	core.NewReporter(r.out, r.logger).ReportAll(results)

	relocator := &core.Relocator{
		Source:      r.cfg.Source,
		Destination: r.cfg.Destination,
		Operation:   r.cfg.Operation,
		DryRun:      r.cfg.DryRun,
		Logger:      r.logger,
		Metrics:     r.metrics,
	}
	relocated, err := relocator.Relocate(ctx, results)
	if err != nil {
		return err
	}

	var failed int
	for _, res := range relocated {
		if res.State == models.RelocationFailed {
			failed++
		}
	}
	r.logger.Info("Relocation finished", zap.Int("total", len(relocated)), zap.Int("failed", failed))

	return nil
}
