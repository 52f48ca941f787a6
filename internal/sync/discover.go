// Package sync orchestrates pushing, pulling, and undoing conversation
// history between a user's local Claude history and a git-backed sync
// repository.
package sync

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claudesync/cli/internal/filter"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/session"
)

// LargeFileWarningBytes is the size at which a discovered conversation file
// is flagged as worth archiving or cleaning up.
const LargeFileWarningBytes = 10 * 1024 * 1024

// DiscoveredSession pairs a parsed Session with the path it was found at
// relative to the directory discovery walked.
type DiscoveredSession struct {
	Session      *session.Session
	RelativePath string
}

// Discover walks base looking for conversation files, parsing each one that
// passes predicate. A file that fails to parse is skipped rather than
// aborting the whole walk, since one corrupt transcript shouldn't block
// syncing the rest of a user's history. A missing base directory yields an
// empty result, not an error — a fresh machine has no local history yet.
func Discover(base string, predicate filter.Predicate) ([]DiscoveredSession, error) {
	var found []DiscoveredSession

	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != paths.ConversationExt {
			return nil
		}
		if predicate != nil && !predicate(path) {
			return nil
		}

		s, parseErr := session.Load(path)
		if parseErr != nil {
			return nil
		}

		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			rel = path
		}
		found = append(found, DiscoveredSession{Session: s, RelativePath: rel})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("discovering conversation files under %s: %w", base, err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].RelativePath < found[j].RelativePath
	})
	return found, nil
}

// LargeFiles returns every path in paths whose size is at least
// LargeFileWarningBytes, for callers that want to warn the user before a
// sync operation touches them.
func LargeFiles(filePaths []string) []string {
	var large []string
	for _, p := range filePaths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.Size() >= LargeFileWarningBytes {
			large = append(large, p)
		}
	}
	return large
}

// ExtractProjectName returns the last non-empty '-'-separated segment of an
// encoded Claude project directory name, e.g.
// "-Users-abc-Documents-GitHub-myproject" -> "myproject".
func ExtractProjectName(encodedPath string) string {
	segments := strings.Split(encodedPath, "-")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return encodedPath
}

// FindColliding groups the immediate subdirectories of projectsDir by their
// extracted project name, returning only names with more than one matching
// directory — the set of names that would collide if Claude's encoded paths
// were flattened to bare project names.
func FindColliding(projectsDir string) (map[string][]string, error) {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, fmt.Errorf("reading projects directory %s: %w", projectsDir, err)
	}

	byName := make(map[string][]string)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := ExtractProjectName(e.Name())
		byName[name] = append(byName[name], filepath.Join(projectsDir, e.Name()))
	}

	for name, dirs := range byName {
		if len(dirs) <= 1 {
			delete(byName, name)
		}
	}
	return byName, nil
}
