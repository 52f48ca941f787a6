package history

import (
	"fmt"
	"time"
)

// Record is one sync operation: what kind it was, when it ran, which
// conversations it touched, and (if any) the snapshot that can undo it.
type Record struct {
	OperationType        OperationKind         `json:"operation_type"`
	Timestamp            time.Time             `json:"timestamp"`
	Branch               *string               `json:"branch,omitempty"`
	AffectedConversations []ConversationSummary `json:"affected_conversations"`
	SnapshotID            *string               `json:"snapshot_id,omitempty"`
}

// NewRecord builds a Record stamped with the current time.
func NewRecord(kind OperationKind, branch *string, affected []ConversationSummary) *Record {
	return &Record{
		OperationType:         kind,
		Timestamp:             time.Now().UTC(),
		Branch:                branch,
		AffectedConversations: affected,
	}
}

// Summary returns a one-line human-readable description of the record.
func (r *Record) Summary() string {
	branch := "unknown branch"
	if r.Branch != nil {
		branch = *r.Branch
	}
	return fmt.Sprintf(
		"%s operation on %s at %s (%d conversations affected)",
		r.OperationType, branch, r.Timestamp.Format("2006-01-02 15:04:05 UTC"),
		len(r.AffectedConversations),
	)
}

// Stats counts affected conversations by operation kind.
func (r *Record) Stats() map[ConversationOp]int {
	stats := make(map[ConversationOp]int)
	for _, c := range r.AffectedConversations {
		stats[c.Operation]++
	}
	return stats
}
