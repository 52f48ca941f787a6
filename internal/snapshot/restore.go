package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathTraversal is returned by Restore when a file path in the snapshot
// would resolve outside the allowed base directory.
var ErrPathTraversal = errors.New("snapshot: path traversal detected")

// Restore writes every file in this snapshot's reconstructed full state
// back to its original location, overwriting current content, and removes
// any file the snapshot (or one of its bases) recorded as deleted.
//
// allowedBaseDir bounds where a write may land: every destination path is
// canonicalized (symlinks and ".." resolved) and checked to still fall
// under allowedBaseDir before anything is written, so a snapshot document
// that was tampered with (or simply corrupted) can't be used to write
// outside the conversation tree.
func (s *Snapshot) Restore(allowedBaseDir, snapshotsDir string) error {
	allowedBase, err := filepath.EvalSymlinks(allowedBaseDir)
	if err != nil {
		return fmt.Errorf("resolving allowed base directory %s: %w", allowedBaseDir, err)
	}

	state, err := s.ReconstructFullState(snapshotsDir)
	if err != nil {
		return err
	}

	for _, path := range s.DeletedFiles {
		canonical, err := filepath.EvalSymlinks(path)
		if err != nil {
			// Already gone, or never existed under this name — nothing to
			// delete.
			continue
		}
		if !withinBase(canonical, allowedBase) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("deleting file %s: %w", path, err)
		}
	}

	for path, content := range state {
		if err := restoreFile(path, content, allowedBase); err != nil {
			return err
		}
	}

	return nil
}

func restoreFile(path string, content []byte, allowedBase string) error {
	if parent := filepath.Dir(path); parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", parent, err)
		}
	}

	// The file may not exist yet (it could have been deleted locally since
	// the snapshot was taken); EvalSymlinks needs something to resolve, so
	// create it empty first if necessary.
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating placeholder file %s: %w", path, err)
		}
	}

	canonical, err := filepath.EvalSymlinks(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}
	if !withinBase(canonical, allowedBase) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathTraversal, path, allowedBase)
	}

	if err := os.WriteFile(canonical, content, 0o644); err != nil {
		return fmt.Errorf("restoring file %s: %w", canonical, err)
	}
	return nil
}

func withinBase(candidate, base string) bool {
	rel, err := filepath.Rel(base, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
