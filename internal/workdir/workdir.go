// Package workdir manages the per-job scratch directories under paths.work_dir.
//
// Each job creates one directory named "job-<id prefix>-<random>" and removes
// it when the job ends. Directories left behind by a killed process are
// reclaimed by CleanStale and CleanOrphaned when the next service starts.
package workdir

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"dubby/internal/logging"
)

// Prefix starts every job scratch directory name.
const Prefix = "job-"

const idPrefixLen = 8

// Create makes a fresh scratch directory for jobID under root.
func Create(root, jobID string) (string, error) {
	dir, err := os.MkdirTemp(root, Prefix+shortID(jobID)+"-")
	if err != nil {
		return "", fmt.Errorf("create work directory: %w", err)
	}
	return dir, nil
}

// JobIDPrefix extracts the job ID prefix from a scratch directory name.
func JobIDPrefix(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, Prefix)
	if !ok {
		return "", false
	}
	prefix, _, ok := strings.Cut(rest, "-")
	if !ok || prefix == "" {
		return "", false
	}
	return prefix, true
}

func shortID(id string) string {
	if len(id) > idPrefixLen {
		return id[:idPrefixLen]
	}
	return id
}

// CleanResult contains the outcome of a cleanup pass.
type CleanResult struct {
	Removed []string
	// Err aggregates every removal failure; nil when all succeeded.
	Err error
}

// CleanStale removes job directories under root older than maxAge.
func CleanStale(ctx context.Context, root string, maxAge time.Duration, logger *slog.Logger) CleanResult {
	cutoff := time.Now().Add(-maxAge)
	return clean(ctx, root, logger, "stale", func(_ string, info os.FileInfo) bool {
		return info.ModTime().Before(cutoff)
	})
}

// CleanOrphaned removes job directories whose job is not in active, keyed by
// the eight-character ID prefix.
func CleanOrphaned(ctx context.Context, root string, active map[string]struct{}, logger *slog.Logger) CleanResult {
	return clean(ctx, root, logger, "orphaned", func(prefix string, _ os.FileInfo) bool {
		_, ok := active[prefix]
		return !ok
	})
}

// ActiveSet builds the lookup CleanOrphaned expects from job IDs.
func ActiveSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[shortID(id)] = struct{}{}
	}
	return set
}

func clean(ctx context.Context, root string, logger *slog.Logger, reason string, remove func(prefix string, info os.FileInfo) bool) CleanResult {
	result := CleanResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Err = multierror.Append(result.Err, err)
		}
		return result
	}

	var errs *multierror.Error
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if !entry.IsDir() {
			continue
		}
		prefix, ok := JobIDPrefix(entry.Name())
		if !ok {
			continue
		}
		dirPath := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", dirPath, err))
			continue
		}
		if !remove(prefix, info) {
			continue
		}
		if err := os.RemoveAll(dirPath); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", dirPath, err))
			logger.Warn("failed to remove "+reason+" work directory",
				logging.String("path", dirPath),
				logging.Error(err),
				logging.String(logging.FieldEventType, "workdir_cleanup_failed"),
				logging.String(logging.FieldErrorHint, "check paths.work_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed "+reason+" work directory",
			logging.String("path", dirPath),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "workdir_cleanup"),
		)
	}
	result.Err = errs.ErrorOrNil()
	return result
}
