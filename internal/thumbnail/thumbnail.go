// Package thumbnail renders small JPEG previews of image files.
package thumbnail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/fedragon/go-imgcoords/internal/db"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const (
	// MediumSize bounds both dimensions of a medium preview.
	MediumSize = 256
	Quality    = 8
)

// Generate decodes the image at path, applies its EXIF orientation and fits it
// into a size x size box. The result is JPEG encoded at the given quality.
func Generate(path string, size int, quality int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("cannot decode %v: %w", path, err)
	}

	thumb := imaging.Fit(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("cannot encode thumbnail of %v: %w", path, err)
	}

	return buf.Bytes(), nil
}

// Generator produces base64 encoded medium previews, optionally memoised in a
// ThumbnailCache keyed by the file contents.
type Generator struct {
	Size    int
	Quality int
	Cache   *db.ThumbnailCache
	Logger  *zap.Logger
}

func NewGenerator(logger *zap.Logger, cache *db.ThumbnailCache) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		Size:    MediumSize,
		Quality: Quality,
		Cache:   cache,
		Logger:  logger,
	}
}

// Base64 returns the unpadded base64 encoding of the preview of path.
func (g *Generator) Base64(path string) (string, error) {
	var key []byte

	if g.Cache != nil {
		hash, err := db.HashFile(path)
		if err != nil {
			return "", err
		}
		key = hash

		cached, ok, err := g.Cache.Get(key)
		if err != nil {
			g.Logger.Warn("Cannot read thumbnail cache", zap.String("path", path), zap.Error(err))
		} else if ok {
			g.Logger.Debug("Thumbnail cache hit", zap.String("path", path))
			return cached, nil
		}
	}

	data, err := Generate(path, g.Size, g.Quality)
	if err != nil {
		return "", err
	}

	encoded := base64.RawStdEncoding.EncodeToString(data)

	if key != nil {
		if err := g.Cache.Put(key, encoded); err != nil {
			g.Logger.Warn("Cannot store thumbnail in cache", zap.String("path", path), zap.Error(err))
		}
	}

	return encoded, nil
}
