package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/claudesync/cli/internal/history"
)

// snapshotWire is the on-disk shape of a Snapshot: JSON has no binary type,
// so Files is carried as base64 strings rather than raw bytes, mirroring
// the original implementation's base64_map serde module.
type snapshotWire struct {
	SnapshotID    string                `json:"snapshot_id"`
	Timestamp     time.Time             `json:"timestamp"`
	OperationType history.OperationKind `json:"operation_type"`
	CommitID      *string               `json:"git_commit_hash,omitempty"`
	Branch        *string               `json:"branch,omitempty"`
	Files         map[string]string     `json:"files"`
	BaseID        string                `json:"base_snapshot_id,omitempty"`
	DeletedFiles  []string              `json:"deleted_files,omitempty"`
}

// MarshalJSON encodes s with Files as base64, so the snapshot document
// stays valid JSON regardless of what the captured conversation files
// contain.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	files := make(map[string]string, len(s.Files))
	for path, content := range s.Files {
		files[path] = base64.StdEncoding.EncodeToString(content)
	}
	return json.Marshal(snapshotWire{
		SnapshotID:    s.ID,
		Timestamp:     s.Timestamp,
		OperationType: s.OperationType,
		CommitID:      s.CommitID,
		Branch:        s.Branch,
		Files:         files,
		BaseID:        s.BaseID,
		DeletedFiles:  s.DeletedFiles,
	})
}

// UnmarshalJSON decodes a snapshot document, base64-decoding Files back
// into raw bytes.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var w snapshotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	files := make(map[string][]byte, len(w.Files))
	for path, encoded := range w.Files {
		content, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return err
		}
		files[path] = content
	}

	s.ID = w.SnapshotID
	s.Timestamp = w.Timestamp
	s.OperationType = w.OperationType
	s.CommitID = w.CommitID
	s.Branch = w.Branch
	s.Files = files
	s.BaseID = w.BaseID
	s.DeletedFiles = w.DeletedFiles
	return nil
}
