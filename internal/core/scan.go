package core

import (
	"context"
	"errors"
	"sort"

	"github.com/fedragon/go-imgsift/internal/fs"
	"github.com/fedragon/go-imgsift/internal/media"
	"github.com/fedragon/go-imgsift/internal/metrics"
	"github.com/fedragon/go-imgsift/internal/models"

	"go.uber.org/zap"
)

// Classifier runs a single file through signature, dimension, aspect ratio
// and resolution checks. It only reads files.
type Classifier struct {
	sniffer   *media.Sniffer
	aspects   models.RatioSet
	threshold models.Threshold
}

func NewClassifier(signatures []models.SignaturePattern, aspects models.RatioSet, threshold models.Threshold) *Classifier {
	return &Classifier{
		sniffer:   media.NewSniffer(signatures),
		aspects:   aspects,
		threshold: threshold,
	}
}

func (c *Classifier) Classify(path string) models.Result {
	rec := models.FileRecord{Path: path}

	prefix, err := fs.ReadPrefix(path, media.SignatureSize)
	if err != nil {
		return models.Result{Record: rec, State: models.Unreadable, Err: err}
	}
	rec.Signature = prefix
	rec.Format = c.sniffer.Classify(prefix)
	if rec.Format == models.Unknown {
		return models.Result{Record: rec, State: models.Unrecognized}
	}

	w, h, err := media.Dimensions(path, rec.Format)
	if err != nil {
		state := models.DimensionFailed
		if errors.Is(err, models.ErrIO) {
			state = models.Unreadable
		}
		return models.Result{Record: rec, State: state, Err: err}
	}
	rec.Width, rec.Height = w, h

	ratio, err := media.Reduce(w, h)
	if err != nil {
		return models.Result{Record: rec, State: models.InvalidDimensions, Err: err}
	}
	if !media.Matches(ratio, c.aspects) {
		return models.Result{Record: rec, State: models.RatioMismatch, Ratio: ratio}
	}
	if !media.Passes(w, h, c.threshold) {
		return models.Result{Record: rec, State: models.TooSmall, Ratio: ratio}
	}

	return models.Result{Record: rec, State: models.Qualified, Ratio: ratio}
}

type Scanner interface {
	Scan(ctx context.Context, root string) []models.Result
}

type ConcurrentScanner struct {
	Classifier *Classifier
	Exclude    *fs.Excluder
	NumWorkers int
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Scan classifies every file under root and returns the results sorted by
// path, regardless of the order workers finished in.
func (cs *ConcurrentScanner) Scan(ctx context.Context, root string) []models.Result {
	cs.Logger.Info("Scanning files", zap.String("source", root), zap.Int("num_workers", cs.NumWorkers))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := fs.Walk(ctx, cs.Logger, cs.Metrics, root, cs.Exclude)

	numWorkers := cs.NumWorkers
	if numWorkers < 1 {
		numWorkers = 1
	}
	workers := make([]<-chan models.Result, numWorkers)
	for i := 0; i < numWorkers; i++ {
		workers[i] = cs.classify(ctx, i, entries)
	}

	var results []models.Result
	for r := range merge(ctx, workers...) {
		if len(results) > 0 && len(results)%1000 == 0 {
			cs.Logger.Info("Scanned a(nother) batch of files", zap.Int("count", len(results)))
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Record.Path < results[j].Record.Path })
	cs.Logger.Info("Total scanned files", zap.Int("total", len(results)))

	return results
}

func (cs *ConcurrentScanner) classify(ctx context.Context, id int, entries <-chan models.Entry) <-chan models.Result {
	results := make(chan models.Result)
	log := cs.Logger.With(zap.Int("worker_id", id))

	go func() {
		defer close(results)

		for e := range entries {
			var r models.Result
			if e.Err != nil {
				r = models.Result{Record: models.FileRecord{Path: e.Path}, State: models.Unreadable, Err: e.Err}
			} else {
				stop := cs.Metrics.Record("classify")
				r = cs.Classifier.Classify(e.Path)
				_ = stop()
			}

			_ = cs.Metrics.Increment("scan." + r.State.String())
			log.Debug("Classified file", zap.String("path", r.Record.Path), zap.Stringer("state", r.State), zap.Stringer("format", r.Record.Format))

			select {
			case <-ctx.Done():
				return
			case results <- r:
			}
		}
	}()

	return results
}
