package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// defaultMaxFileSizeBytes is the default cap on a conversation file's size
// before FilterConfig excludes it from sync.
const defaultMaxFileSizeBytes = 10 * 1024 * 1024

// FilterConfig controls which conversation files get synced: an age cutoff,
// glob include/exclude patterns, and a size cap. Loaded from and saved to
// config.toml.
type FilterConfig struct {
	// ExcludeOlderThanDays, when non-nil, excludes any file whose
	// modification time is older than this many days.
	ExcludeOlderThanDays *uint32 `toml:"exclude_older_than_days,omitempty"`

	// IncludePatterns, when non-empty, restricts sync to files whose path
	// matches at least one of these doublestar glob patterns.
	IncludePatterns []string `toml:"include_patterns"`

	// ExcludePatterns excludes any file whose path matches one of these
	// doublestar glob patterns, checked before IncludePatterns.
	ExcludePatterns []string `toml:"exclude_patterns"`

	// MaxFileSizeBytes excludes any file larger than this size.
	MaxFileSizeBytes uint64 `toml:"max_file_size_bytes"`
}

// DefaultFilterConfig returns the filter configuration used when no
// config.toml exists yet: no age or pattern restrictions, a 10MB size cap.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		MaxFileSizeBytes: defaultMaxFileSizeBytes,
	}
}

// LoadFilterConfig reads the filter configuration from path. A missing file
// yields DefaultFilterConfig rather than an error, since an unconfigured
// sync repository should still sync everything by default.
func LoadFilterConfig(path string) (*FilterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultFilterConfig(), nil
		}
		return nil, fmt.Errorf("reading filter config %s: %w", path, err)
	}

	cfg := DefaultFilterConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing filter config %s: %w", path, err)
	}
	return cfg, nil
}

// Save persists the filter configuration to path as TOML.
func (c *FilterConfig) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating configuration directory %s: %w", dir, err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializing filter config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp config file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp config file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp config file %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing config file %s: %w", path, err)
	}
	return nil
}

// ExcludedByAge reports whether modTime is older than ExcludeOlderThanDays.
// Always false when no age limit is configured.
func (c *FilterConfig) ExcludedByAge(modTime time.Time) bool {
	if c.ExcludeOlderThanDays == nil {
		return false
	}
	maxAge := time.Duration(*c.ExcludeOlderThanDays) * 24 * time.Hour
	return time.Since(modTime) > maxAge
}
