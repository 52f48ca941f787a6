// Package snapshot captures and restores the state of conversation files
// around a sync operation, so claude-sync can undo a push or pull. To keep
// disk usage bounded, snapshots are differential: each one after the first
// of its kind stores only what changed since its base.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/claudesync/cli/internal/history"
)

// Snapshot is the complete (or differential) state of a set of conversation
// files captured before a sync operation.
type Snapshot struct {
	ID            string               `json:"snapshot_id"`
	Timestamp     time.Time            `json:"timestamp"`
	OperationType history.OperationKind `json:"operation_type"`

	// CommitID is the sync repository's HEAD commit before the operation,
	// when the snapshot was taken around a push.
	CommitID *string `json:"git_commit_hash,omitempty"`
	Branch   *string `json:"branch,omitempty"`

	// Files maps a conversation file's path to its captured bytes. For a
	// differential snapshot this holds only files that changed or were
	// added relative to BaseID.
	Files map[string][]byte `json:"-"`

	// BaseID names the snapshot this one is differential against. Empty
	// for a full snapshot.
	BaseID string `json:"base_snapshot_id,omitempty"`

	// DeletedFiles lists paths present in the base snapshot's reconstructed
	// state that no longer exist as of this snapshot.
	DeletedFiles []string `json:"deleted_files,omitempty"`
}

// newID generates a fresh snapshot identifier.
func newID() string {
	return uuid.NewString()
}
