package filter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudesync/cli/internal/config"
)

func writeConversation(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func TestShouldInclude_DefaultConfigIncludesEverything(t *testing.T) {
	dir := t.TempDir()
	path := writeConversation(t, dir, "projects/foo/session.jsonl", 100)
	assert.True(t, ShouldInclude(config.DefaultFilterConfig(), path))
}

func TestShouldInclude_ExcludesOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConversation(t, dir, "session.jsonl", 200)
	cfg := config.DefaultFilterConfig()
	cfg.MaxFileSizeBytes = 100
	assert.False(t, ShouldInclude(cfg, path))
}

func TestShouldInclude_ExcludePatternWins(t *testing.T) {
	dir := t.TempDir()
	path := writeConversation(t, dir, "projects/scratch/session.jsonl", 10)
	cfg := config.DefaultFilterConfig()
	cfg.ExcludePatterns = []string{"**/scratch/**"}
	assert.False(t, ShouldInclude(cfg, path))
}

func TestShouldInclude_IncludePatternRestrictsToMatches(t *testing.T) {
	dir := t.TempDir()
	included := writeConversation(t, dir, "projects/important/session.jsonl", 10)
	excluded := writeConversation(t, dir, "projects/other/session.jsonl", 10)
	cfg := config.DefaultFilterConfig()
	cfg.IncludePatterns = []string{"**/important/**"}

	assert.True(t, ShouldInclude(cfg, included))
	assert.False(t, ShouldInclude(cfg, excluded))
}

func TestShouldInclude_ExcludesStaleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConversation(t, dir, "session.jsonl", 10)
	old := time.Now().Add(-60 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	days := uint32(30)
	cfg := config.DefaultFilterConfig()
	cfg.ExcludeOlderThanDays = &days
	assert.False(t, ShouldInclude(cfg, path))
}

func TestShouldInclude_MissingFileExcluded(t *testing.T) {
	assert.False(t, ShouldInclude(config.DefaultFilterConfig(), filepath.Join(t.TempDir(), "gone.jsonl")))
}

func TestNew_BuildsWorkingPredicate(t *testing.T) {
	dir := t.TempDir()
	path := writeConversation(t, dir, "session.jsonl", 10)
	predicate := New(config.DefaultFilterConfig())
	assert.True(t, predicate(path))
}
