// Package dataset maintains an ordered collection of location records and
// merges newly discovered files into it without duplicates.
package dataset

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/fedragon/go-imgcoords/internal/location"

	"go.uber.org/zap"
)

var fileTypes = map[string]struct{}{
	".png":  {},
	".gif":  {},
	".tif":  {},
	".tiff": {},
	".jpg":  {},
	".jpeg": {},
}

// IsImagePath reports whether path has one of the supported image extensions,
// compared case-insensitively.
func IsImagePath(path string) bool {
	_, ok := fileTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

type extractFunc func(path string) (*location.Location, error)

// Set holds location records in discovery order. Records loaded from a prior
// export are never reordered or dropped; the before/after window only applies
// to records added by AddFiles.
type Set struct {
	locations  []*location.Location
	before     *time.Time
	after      *time.Time
	numWorkers int
	logger     *zap.Logger
	extract    extractFunc
}

func New(logger *zap.Logger, numWorkers int) *Set {
	if logger == nil {
		logger = zap.NewNop()
	}
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	return &Set{
		numWorkers: numWorkers,
		logger:     logger,
		extract:    location.FromFile,
	}
}

// SetBefore sets the inclusive upper bound for timestamps of added records.
func (s *Set) SetBefore(t time.Time) {
	s.before = &t
}

// SetAfter sets the inclusive lower bound for timestamps of added records.
func (s *Set) SetAfter(t time.Time) {
	s.after = &t
}

func (s *Set) Len() int {
	return len(s.locations)
}

// Locations returns the records in order. The slice is a copy; the records
// are shared.
func (s *Set) Locations() []*location.Location {
	out := make([]*location.Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// AddFiles extracts a record from every candidate that is not yet part of the
// set, has a supported extension and carries GPS metadata, then appends those
// within the time window. Candidates failing any step are dropped silently.
// The relative order of the added records is not stable.
func (s *Set) AddFiles(ctx context.Context, candidates <-chan string) int {
	existing := make(map[string]struct{}, len(s.locations))
	for _, loc := range s.locations {
		existing[loc.File] = struct{}{}
	}

	pending := s.filter(ctx, existing, candidates)

	workers := make([]<-chan *location.Location, s.numWorkers)
	for i := 0; i < s.numWorkers; i++ {
		workers[i] = s.extractAll(ctx, i, pending)
	}

	added := make([]*location.Location, 0)
	for loc := range merge(ctx, workers...) {
		if !s.inWindow(loc) {
			s.logger.Debug("Outside of time window", zap.String("path", loc.File))
			continue
		}
		added = append(added, loc)
	}

	s.locations = append(s.locations, added...)
	return len(added)
}

// filter drops candidates already present in existing, repeated within the
// batch, not valid UTF-8, or without a supported extension. Once ctx is done
// the remaining candidates are drained so the producer can finish.
func (s *Set) filter(ctx context.Context, existing map[string]struct{}, candidates <-chan string) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		seen := make(map[string]struct{})
		for path := range candidates {
			if !utf8.ValidString(path) {
				s.logger.Debug("Skipping path that is not valid UTF-8", zap.ByteString("path", []byte(path)))
				continue
			}
			if _, ok := existing[path]; ok {
				continue
			}
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}

			if !IsImagePath(path) {
				continue
			}

			select {
			case <-ctx.Done():
				for range candidates {
				}
				return
			case out <- path:
			}
		}
	}()

	return out
}

func (s *Set) extractAll(ctx context.Context, id int, paths <-chan string) <-chan *location.Location {
	extracted := make(chan *location.Location)
	log := s.logger.With(zap.Int("worker_id", id))

	go func() {
		defer close(extracted)

		for path := range paths {
			loc, err := s.extract(path)
			if err != nil {
				log.Debug("No location", zap.String("path", path), zap.Error(err))
				continue
			}

			select {
			case <-ctx.Done():
				return
			case extracted <- loc:
			}
		}
	}()

	return extracted
}

func (s *Set) inWindow(loc *location.Location) bool {
	if s.before == nil && s.after == nil {
		return true
	}

	t, ok := loc.TimestampParsed()
	if !ok {
		return false
	}

	if s.before != nil && t.After(*s.before) {
		return false
	}
	if s.after != nil && t.Before(*s.after) {
		return false
	}

	return true
}

// GenerateMissingThumbnails fills in the thumbnail of every record lacking
// one. Failures leave the affected thumbnail absent.
func (s *Set) GenerateMissingThumbnails(ctx context.Context, fn location.ThumbnailFunc) {
	indexes := make(chan int)

	var wg sync.WaitGroup
	wg.Add(s.numWorkers)

	for i := 0; i < s.numWorkers; i++ {
		go func(id int) {
			defer wg.Done()
			log := s.logger.With(zap.Int("worker_id", id))

			for idx := range indexes {
				loc := s.locations[idx]
				if err := loc.GenerateMissingThumbnail(fn); err != nil {
					log.Debug("No thumbnail", zap.String("path", loc.File), zap.Error(err))
				}
			}
		}(i)
	}

	go func() {
		defer close(indexes)

		for i := range s.locations {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()
}
