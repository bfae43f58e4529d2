// Package fs produces candidate file paths, either by walking a directory
// tree or by reading a newline separated list.
package fs

import (
	"bufio"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Walk sends the canonical path of every regular file below root. Entries that
// cannot be read or resolved are logged and skipped.
func Walk(logger *zap.Logger, root string) <-chan string {
	paths := make(chan string)

	go func() {
		defer close(paths)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Debug("Skipping unreadable entry", zap.String("path", path), zap.Error(err))
				return nil
			}

			if d.IsDir() {
				return nil
			}

			canonical, err := Canonicalize(path)
			if err != nil {
				logger.Debug("Skipping unresolvable entry", zap.String("path", path), zap.Error(err))
				return nil
			}

			paths <- canonical
			return nil
		})

		if err != nil {
			logger.Error("Cannot walk directory tree", zap.String("root", root), zap.Error(err))
		}
	}()

	return paths
}

// Canonicalize returns the absolute path of path with symlinks resolved.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.EvalSymlinks(abs)
}

// ReadLines sends every non blank line of r, trimmed of surrounding whitespace.
func ReadLines(logger *zap.Logger, r io.Reader) <-chan string {
	paths := make(chan string)

	go func() {
		defer close(paths)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			paths <- line
		}

		if err := scanner.Err(); err != nil {
			logger.Error("Cannot read candidate list", zap.Error(err))
		}
	}()

	return paths
}
