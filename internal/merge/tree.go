// Package merge implements the DAG-aware three-way-free merge claude-sync
// uses to combine two copies of the same conversation: it never needs a
// common ancestor, only the local and remote entry sets, because every
// entry already carries the parent link that reconstructs the tree.
package merge

import (
	"sort"

	"github.com/claudesync/cli/internal/session"
)

// MessageNode is one node of a reconstructed conversation tree: an entry
// plus the children whose ParentUUID points at it.
type MessageNode struct {
	Entry    *session.Entry
	Children []*MessageNode
}

func newNode(e *session.Entry) *MessageNode {
	return &MessageNode{Entry: e}
}

// collectEntries walks the subtree depth-first, visiting children in
// timestamp order, and returns the flattened entry list.
func (n *MessageNode) collectEntries() []*session.Entry {
	entries := []*session.Entry{n.Entry}

	sorted := make([]*MessageNode, len(n.Children))
	copy(sorted, n.Children)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessTimestamp(sorted[i].Entry.Timestamp, sorted[j].Entry.Timestamp)
	})

	for _, child := range sorted {
		entries = append(entries, child.collectEntries()...)
	}
	return entries
}

func lessTimestamp(a, b *string) bool {
	switch {
	case a == nil && b == nil:
		return false
	case a == nil:
		return true
	case b == nil:
		return false
	default:
		return *a < *b
	}
}
