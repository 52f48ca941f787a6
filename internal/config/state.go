// Package config loads and saves claude-sync's persistent configuration:
// the sync state document (where the local sync repository lives and how
// it's connected to a remote) and the filter preferences that decide which
// conversation files get synced.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/claudesync/cli/internal/jsonutil"
)

// ErrNotInitialized is returned by LoadState when no state file exists yet —
// the caller hasn't run init.
var ErrNotInitialized = errors.New("config: sync not initialized, run 'claudesync init' first")

// State is the persistent record of where the sync repository lives and how
// it was set up. It is the one piece of configuration every other command
// needs before it can do anything.
type State struct {
	// SyncRepoPath is the local working tree used to store conversation
	// sessions in git form, organized under a projects/ subdirectory.
	SyncRepoPath string `json:"sync_repo_path"`

	// HasRemote is true once a remote (conventionally "origin") is
	// configured, enabling Push/Pull against it.
	HasRemote bool `json:"has_remote"`

	// IsClonedRepo distinguishes a repository obtained via Clone (true)
	// from one created locally via Init (false), which affects whether
	// onboarding needs to reconcile pre-existing history.
	IsClonedRepo bool `json:"is_cloned_repo"`

	// Telemetry controls anonymous usage analytics. nil means not asked
	// yet (treated as disabled), true means opted in, false opted out.
	Telemetry *bool `json:"telemetry,omitempty"`
}

// LoadState reads the state document at path. A missing file is reported as
// ErrNotInitialized rather than a generic not-exist error, since the
// meaningful action for a caller is "tell the user to run init".
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("reading sync state %s: %w", path, err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing sync state %s: %w", path, err)
	}
	return &s, nil
}

// Save persists the state document to path, atomically: content is written
// to a temp file in the same directory, then moved into place with
// os.Rename so a crash mid-write never leaves a truncated state.json.
func (s *State) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating configuration directory %s: %w", dir, err)
	}

	data, err := jsonutil.MarshalIndentWithNewline(s, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing sync state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp state file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp state file %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing state file %s: %w", path, err)
	}
	return nil
}
