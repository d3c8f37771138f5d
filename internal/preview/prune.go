package preview

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"highlighter/internal/logging"
)

// PruneResult lists what Prune removed and what it could not.
type PruneResult struct {
	Removed []string
	Bytes   int64
	Errors  []PruneError
}

// PruneError pairs a path with its removal error.
type PruneError struct {
	Path string
	Err  error
}

// Prune deletes strips in dir that are not in keep, and lock files last
// touched before maxAge ago. Other files are left alone.
func Prune(ctx context.Context, dir string, keep map[string]struct{}, maxAge time.Duration, logger *slog.Logger) PruneResult {
	var result PruneResult
	logger = logging.NewComponentLogger(logger, "preview")

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return result
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, PruneError{Path: dir, Err: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, PruneError{Path: path, Err: err})
			continue
		}

		switch filepath.Ext(entry.Name()) {
		case ".png":
			if _, ok := keep[path]; ok {
				continue
			}
		case ".lock":
			if !info.ModTime().Before(cutoff) {
				continue
			}
		default:
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, PruneError{Path: path, Err: err})
			logger.Warn("strip cleanup failed", logging.String("path", path), logging.Error(err))
			continue
		}
		result.Removed = append(result.Removed, path)
		result.Bytes += info.Size()
		logger.Debug("removed unreferenced strip file", logging.String("path", path))
	}
	return result
}
