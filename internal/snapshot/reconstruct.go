package snapshot

import (
	"fmt"
	"path/filepath"
)

// ReconstructFullState walks this snapshot's base chain (if any) and
// returns the complete path-to-content map this snapshot represents:
// every ancestor's files, with each snapshot's Files overlaid on top of
// its base and its DeletedFiles removed.
func (s *Snapshot) ReconstructFullState(snapshotsDir string) (map[string][]byte, error) {
	state := make(map[string][]byte)

	if s.BaseID != "" {
		basePath := filepath.Join(snapshotsDir, s.BaseID+".json")
		base, err := Load(basePath)
		if err != nil {
			return nil, fmt.Errorf("base snapshot %s not found: snapshot chain is broken: %w", s.BaseID, err)
		}
		baseState, err := base.ReconstructFullState(snapshotsDir)
		if err != nil {
			return nil, err
		}
		state = baseState
	}

	for path, content := range s.Files {
		state[path] = content
	}
	for _, deleted := range s.DeletedFiles {
		delete(state, deleted)
	}

	return state, nil
}
