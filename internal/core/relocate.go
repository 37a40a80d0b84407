package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fedragon/go-imgsift/internal/fs"
	"github.com/fedragon/go-imgsift/internal/metrics"
	"github.com/fedragon/go-imgsift/internal/models"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const lockName = ".imgsift.lock"

type Relocator struct {
	Source      string
	Destination string
	Operation   models.Operation
	DryRun      bool
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Plan maps path to the same relative location under the destination root.
func (r *Relocator) Plan(path string) (models.RelocationPlan, error) {
	rel, err := filepath.Rel(filepath.Clean(r.Source), filepath.Clean(path))
	if err != nil {
		return models.RelocationPlan{}, err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return models.RelocationPlan{}, fmt.Errorf("%v is not inside %v", path, r.Source)
	}

	return models.RelocationPlan{
		Source:      path,
		Destination: filepath.Join(r.Destination, rel),
		Operation:   r.Operation,
	}, nil
}

// Execute carries out a single plan. An occupied destination is never
// overwritten: identical content counts as already relocated, anything
// else is a conflict.
func (r *Relocator) Execute(plan models.RelocationPlan) (models.State, error) {
	log := r.Logger.With(zap.String("source", plan.Source), zap.String("dest", plan.Destination))

	info, err := os.Lstat(plan.Source)
	if errors.Is(err, os.ErrNotExist) {
		return models.RelocationFailed, fmt.Errorf("%w: %v", models.ErrSourceMissing, plan.Source)
	} else if err != nil {
		return models.RelocationFailed, err
	}

	if dst, err := os.Lstat(plan.Destination); err == nil {
		if !dst.Mode().IsRegular() {
			return models.RelocationFailed, fmt.Errorf("%w: %v is not a regular file", models.ErrConflict, plan.Destination)
		}
		same, err := fs.SameContent(r.Metrics, plan.Source, plan.Destination)
		if err != nil {
			return models.RelocationFailed, err
		}
		if !same {
			return models.RelocationFailed, fmt.Errorf("%w: %v holds different content", models.ErrConflict, plan.Destination)
		}
		return r.alreadyRelocated(log, plan)
	} else if !errors.Is(err, os.ErrNotExist) {
		return models.RelocationFailed, err
	}

	if r.DryRun {
		log.Info("Would have relocated file", zap.String("operation", string(plan.Operation)))
		return models.Planned, nil
	}

	if err := fs.EnsureDir(filepath.Dir(plan.Destination)); err != nil {
		return models.RelocationFailed, err
	}

	stop := r.Metrics.Record("relocate." + string(plan.Operation))
	switch plan.Operation {
	case models.Copy:
		err = fs.Copy(plan.Source, plan.Destination)
	default:
		err = fs.Move(plan.Source, plan.Destination)
	}
	_ = stop()
	if err != nil {
		return models.RelocationFailed, err
	}

	log.Info("Relocated file", zap.String("operation", string(plan.Operation)), zap.String("size", humanize.Bytes(uint64(info.Size()))))
	return models.Relocated, nil
}

func (r *Relocator) alreadyRelocated(log *zap.Logger, plan models.RelocationPlan) (models.State, error) {
	if plan.Operation != models.Move {
		log.Info("Destination already holds an identical copy")
		return models.AlreadyRelocated, nil
	}

	if r.DryRun {
		log.Info("Would have removed source already present at destination")
		return models.AlreadyRelocated, nil
	}

	if err := os.Remove(plan.Source); err != nil {
		return models.RelocationFailed, fmt.Errorf("cannot remove %v: %w", plan.Source, err)
	}
	log.Info("Removed source already present at destination")

	return models.AlreadyRelocated, nil
}

// Relocate executes a plan for every qualified result, one file at a time.
// Failures are logged and recorded in the returned results; they never stop
// the batch. A cancelled ctx stops between files.
func (r *Relocator) Relocate(ctx context.Context, results []models.Result) ([]models.Result, error) {
	var qualified []models.Result
	for _, res := range results {
		if res.State == models.Qualified {
			qualified = append(qualified, res)
		}
	}
	if len(qualified) == 0 {
		r.Logger.Info("Nothing to relocate")
		return nil, nil
	}

	r.Logger.Info("Relocating files", zap.String("target_directory", r.Destination), zap.Int("count", len(qualified)), zap.Bool("dry_run", r.DryRun))

	if !r.DryRun {
		release, err := r.lock()
		if err != nil {
			return nil, err
		}
		defer release()
	}

	out := make([]models.Result, 0, len(qualified))
	for _, res := range qualified {
		if err := ctx.Err(); err != nil {
			r.Logger.Warn("Relocation interrupted", zap.Int("relocated", len(out)), zap.Int("remaining", len(qualified)-len(out)))
			return out, err
		}

		plan, err := r.Plan(res.Record.Path)
		state := models.RelocationFailed
		if err == nil {
			state, err = r.Execute(plan)
		}
		if err != nil {
			r.Logger.Error("Cannot relocate file", zap.String("source", res.Record.Path), zap.Error(err))
		}

		_ = r.Metrics.Increment("relocate." + state.String())
		res.State, res.Err = state, err
		out = append(out, res)
	}

	return out, nil
}

func (r *Relocator) lock() (func(), error) {
	if err := fs.EnsureDir(r.Destination); err != nil {
		return nil, err
	}

	path := filepath.Join(r.Destination, lockName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another run is already relocating into %v", r.Destination)
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			r.Logger.Warn("Failed to release destination lock", zap.Error(err))
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			r.Logger.Warn("Failed to remove destination lock", zap.Error(err))
		}
	}, nil
}
