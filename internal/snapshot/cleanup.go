package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cleanup removes snapshots older than maxAge from dir, skipping any
// snapshot that another snapshot's BaseID still references — deleting a
// referenced base would break that snapshot's reconstruction chain.
// Returns the IDs of the snapshots it removed.
func Cleanup(dir string, maxAge time.Duration) ([]string, error) {
	all, err := List(dir)
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(all))
	for _, s := range all {
		if s.BaseID != "" {
			referenced[s.BaseID] = true
		}
	}

	cutoff := time.Now().Add(-maxAge)
	var removed []string
	for _, s := range all {
		if s.Timestamp.After(cutoff) {
			continue
		}
		if referenced[s.ID] {
			continue
		}
		path := filepath.Join(dir, s.ID+".json")
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("removing snapshot %s: %w", path, err)
		}
		removed = append(removed, s.ID)
	}
	return removed, nil
}

// Orphaned returns every snapshot in dir whose BaseID points at a snapshot
// that no longer exists — a broken chain that can never be reconstructed,
// surfaced so a doctor-style command can flag it for the user.
func Orphaned(dir string) ([]*Snapshot, error) {
	all, err := List(dir)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]bool, len(all))
	for _, s := range all {
		byID[s.ID] = true
	}

	var orphaned []*Snapshot
	for _, s := range all {
		if s.BaseID != "" && !byID[s.BaseID] {
			orphaned = append(orphaned, s)
		}
	}
	return orphaned, nil
}
