package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docfields/constants"
)

// ScanStats summarises a directory walk.
type ScanStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// ScanOptions controls which files a walk returns.
type ScanOptions struct {
	// Exts limits the walk to these extensions; empty means every supported one.
	Exts       []string
	SkipHidden bool
}

func (o ScanOptions) extSet() map[string]struct{} {
	if len(o.Exts) == 0 {
		return constants.AllowedExtensions
	}
	exts := make(map[string]struct{}, len(o.Exts))
	for _, e := range o.Exts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			exts[e] = struct{}{}
		}
	}
	return exts
}

// ScanDirectory walks root and returns the supported files under it in
// lexical order. Unreadable entries are counted and logged, not fatal.
func ScanDirectory(root string, opts ScanOptions, logger *slog.Logger) ([]string, ScanStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, ScanStats{}, errors.New("root path is required")
	}
	exts := opts.extSet()

	var (
		paths []string
		stats ScanStats
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("ingest.scan.entry_error", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if path != root && opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			stats.Skipped++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		stats.Scanned++
		if !allowed(path, exts) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(paths)
	logger.Debug("ingest.scan.done", "root", root, "matched", stats.Matched, "skipped", stats.Skipped, "failed", stats.Failed)
	return paths, stats, nil
}

// ExpandPaths replaces every directory argument with the supported files
// beneath it. File arguments are passed through untouched, in order.
func ExpandPaths(args []string, opts ScanOptions, logger *slog.Logger) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}
		found, _, err := ScanDirectory(arg, opts, logger)
		if err != nil {
			return nil, err
		}
		out = append(out, found...)
	}
	return out, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

func allowed(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
