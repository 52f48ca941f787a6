// Package filter decides which conversation files a sync operation should
// include, based on glob patterns, age, and size limits read from
// config.toml.
package filter

import (
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/claudesync/cli/internal/config"
)

// Predicate reports whether the file at path should be included in a sync
// operation. Discovery calls this once per candidate file; it is injected
// rather than imported directly so callers can test discovery without a
// real FilterConfig.
type Predicate func(path string) bool

// New builds a Predicate from cfg. Matching follows src/filter.rs's order:
// size first, then exclude patterns, then include patterns (if any are
// set), then age.
func New(cfg *config.FilterConfig) Predicate {
	return func(path string) bool {
		return ShouldInclude(cfg, path)
	}
}

// ShouldInclude applies cfg's filters to a single file path, stat'ing it to
// check size and age. A file that can no longer be stat'ed (e.g. it was
// deleted between discovery and filtering) is excluded.
func ShouldInclude(cfg *config.FilterConfig, path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	if cfg.MaxFileSizeBytes > 0 && uint64(info.Size()) > cfg.MaxFileSizeBytes {
		return false
	}

	for _, pattern := range cfg.ExcludePatterns {
		if matches(pattern, path) {
			return false
		}
	}

	if len(cfg.IncludePatterns) > 0 {
		included := false
		for _, pattern := range cfg.IncludePatterns {
			if matches(pattern, path) {
				included = true
				break
			}
		}
		if !included {
			return false
		}
	}

	if cfg.ExcludedByAge(info.ModTime()) {
		return false
	}

	return true
}

// matches reports whether path matches pattern, treating the pattern as a
// doublestar glob and falling back to a plain substring match if the
// pattern doesn't parse (mirroring the permissive matching of the filter
// this package replaces).
func matches(pattern, path string) bool {
	ok, err := doublestar.Match(pattern, path)
	if err != nil {
		return false
	}
	return ok
}
