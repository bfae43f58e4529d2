package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fedragon/go-imgcoords/internal/dataset"
	"github.com/fedragon/go-imgcoords/internal/db"
	"github.com/fedragon/go-imgcoords/internal/thumbnail"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"
)

// Source produces the candidate paths of a run.
type Source func() <-chan string

type Options struct {
	// Update is a prior GeoJSON or KML dataset to extend.
	Update     string
	Format     string
	Thumbnails bool
	Before     *time.Time
	After      *time.Time
	// Output is written atomically when set, otherwise the dataset goes to Stdout.
	Output     string
	CachePath  string
	NumWorkers int
}

type Runner struct {
	logger *zap.Logger
	opts   Options
	stdout io.Writer
}

func NewRunner(logger *zap.Logger, opts Options, stdout io.Writer) *Runner {
	return &Runner{
		logger: logger,
		opts:   opts,
		stdout: stdout,
	}
}

// Run loads the prior dataset, merges the candidates from source into it and
// renders the result. Only a prior dataset that cannot be loaded, or an output
// that cannot be written, fails the run.
func (r *Runner) Run(ctx context.Context, source Source) error {
	start := time.Now()
	defer func() {
		r.logger.Info("Elapsed time", zap.Duration("elapsed", time.Since(start)))
	}()

	set := dataset.New(r.logger, r.opts.NumWorkers)
	if r.opts.Before != nil {
		set.SetBefore(*r.opts.Before)
	}
	if r.opts.After != nil {
		set.SetAfter(*r.opts.After)
	}

	if r.opts.Update != "" {
		if err := set.LoadFile(r.opts.Update); err != nil {
			return fmt.Errorf("failed to parse original data: %w", err)
		}
		r.logger.Info("Loaded prior dataset", zap.String("path", r.opts.Update), zap.Int("count", set.Len()))
	}

	added := set.AddFiles(ctx, source())
	r.logger.Info("Added new locations", zap.Int("added", added), zap.Int("total", set.Len()))

	if r.opts.Thumbnails {
		closeCache := r.generateThumbnails(ctx, set)
		defer closeCache()
	}

	var buf bytes.Buffer
	if err := set.Render(&buf, r.opts.Format); err != nil {
		if errors.Is(err, dataset.ErrUnknownFormat) {
			r.logger.Error("Cannot render dataset", zap.String("format", r.opts.Format), zap.Error(err))
			return nil
		}
		return err
	}

	if r.opts.Output != "" {
		if err := atomic.WriteFile(r.opts.Output, &buf); err != nil {
			return fmt.Errorf("cannot write %v: %w", r.opts.Output, err)
		}
		r.logger.Info("Wrote dataset", zap.String("path", r.opts.Output))
		return nil
	}

	_, err := io.Copy(r.stdout, &buf)
	return err
}

func (r *Runner) generateThumbnails(ctx context.Context, set *dataset.Set) func() {
	var cache *db.ThumbnailCache
	closeCache := func() {}

	if r.opts.CachePath != "" {
		dbase, err := db.Connect(r.opts.CachePath)
		if err != nil {
			r.logger.Warn("Cannot open thumbnail cache", zap.String("path", r.opts.CachePath), zap.Error(err))
		} else {
			closeCache = func() {
				if err := dbase.Close(); err != nil {
					r.logger.Info(err.Error())
				}
			}

			if cache, err = db.NewThumbnailCache(dbase); err != nil {
				r.logger.Warn("Cannot use thumbnail cache", zap.String("path", r.opts.CachePath), zap.Error(err))
				cache = nil
			}
		}
	}

	gen := thumbnail.NewGenerator(r.logger, cache)
	set.GenerateMissingThumbnails(ctx, gen.Base64)

	return closeCache
}
