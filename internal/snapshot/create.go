package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/claudesync/cli/internal/history"
)

// Create captures the current content of every path in paths into a full
// snapshot. A path that doesn't exist is skipped rather than treated as an
// error — conversation files routinely come and go between syncs.
func Create(kind history.OperationKind, paths []string, commitID, branch *string) (*Snapshot, error) {
	files, err := readFiles(paths)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		ID:            newID(),
		Timestamp:     time.Now().UTC(),
		OperationType: kind,
		CommitID:      commitID,
		Branch:        branch,
		Files:         files,
	}, nil
}

// CreateDifferential captures paths' current content as a snapshot
// differential against the most recent snapshot of the same operation
// kind found in snapshotsDir. If no prior snapshot of that kind exists,
// the result is equivalent to Create (a full snapshot).
func CreateDifferential(kind history.OperationKind, paths []string, commitID, branch *string, snapshotsDir string) (*Snapshot, error) {
	current, err := readFiles(paths)
	if err != nil {
		return nil, err
	}

	base, err := FindLatest(kind, snapshotsDir)
	if err != nil {
		return nil, err
	}

	if base == nil {
		return &Snapshot{
			ID:            newID(),
			Timestamp:     time.Now().UTC(),
			OperationType: kind,
			CommitID:      commitID,
			Branch:        branch,
			Files:         current,
		}, nil
	}

	baseState, err := base.ReconstructFullState(snapshotsDir)
	if err != nil {
		return nil, fmt.Errorf("reconstructing base snapshot %s: %w", base.ID, err)
	}

	changed := make(map[string][]byte)
	for path, content := range current {
		baseContent, ok := baseState[path]
		if !ok || !bytes.Equal(baseContent, content) {
			changed[path] = content
		}
	}

	var deleted []string
	for path := range baseState {
		if _, ok := current[path]; !ok {
			deleted = append(deleted, path)
		}
	}

	return &Snapshot{
		ID:            newID(),
		Timestamp:     time.Now().UTC(),
		OperationType: kind,
		CommitID:      commitID,
		Branch:        branch,
		Files:         changed,
		BaseID:        base.ID,
		DeletedFiles:  deleted,
	}, nil
}

func readFiles(paths []string) (map[string][]byte, error) {
	files := make(map[string][]byte, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("reading file for snapshot %s: %w", path, err)
		}
		files[path] = content
	}
	return files, nil
}
