package merge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/claudesync/cli/internal/session"
)

// ErrCycleDetected is returned by Merge when an entry set's parent_uuid
// links form a cycle instead of a forest. The original algorithm this
// package ports assumed acyclic input; claude-sync can't assume every
// transcript producer is well-behaved, so it refuses to merge rather than
// silently dropping or misordering the affected messages.
var ErrCycleDetected = errors.New("merge: cycle detected in parent_uuid chain")

// buildTree reconstructs the forest of MessageNodes implied by entries'
// parent links, preferring resolvedEdits' content for any UUID it covers.
// Entries whose parent UUID isn't itself present in this entry set become
// roots of their own (orphaned) subtree, same as an entry with no parent at
// all — the spec never assumes the full ancestor chain traveled with a
// partial sync.
func (m *merger) buildTree(entries []*session.Entry, resolvedEdits map[string]*session.Entry) ([]*MessageNode, error) {
	byUUID := make(map[string]*session.Entry, len(entries))
	for _, e := range entries {
		uuid := *e.UUID
		if resolved, ok := resolvedEdits[uuid]; ok {
			byUUID[uuid] = resolved
		} else {
			byUUID[uuid] = e
		}
	}

	childrenOf := make(map[string][]*session.Entry)
	var rootEntries []*session.Entry
	for _, e := range byUUID {
		if e.ParentUUID == nil {
			rootEntries = append(rootEntries, e)
			continue
		}
		childrenOf[*e.ParentUUID] = append(childrenOf[*e.ParentUUID], e)
	}

	visited := make(map[string]bool, len(byUUID))
	inPath := make(map[string]bool, len(byUUID))

	var build func(e *session.Entry) (*MessageNode, error)
	build = func(e *session.Entry) (*MessageNode, error) {
		node := newNode(e)
		if e.UUID == nil {
			return node, nil
		}
		uuid := *e.UUID
		// Cycle guard: a corrupt parent chain (e.g. two entries whose
		// parent_uuid fields point at each other) would otherwise recurse
		// forever.
		if inPath[uuid] {
			return nil, fmt.Errorf("%w: uuid %s", ErrCycleDetected, uuid)
		}
		if visited[uuid] {
			return node, nil
		}
		visited[uuid] = true
		inPath[uuid] = true
		for _, child := range childrenOf[uuid] {
			childNode, err := build(child)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, childNode)
		}
		inPath[uuid] = false
		return node, nil
	}

	var roots []*MessageNode
	for _, e := range rootEntries {
		node, err := build(e)
		if err != nil {
			return nil, err
		}
		roots = append(roots, node)
	}

	// Orphaned subtrees: children whose parent UUID doesn't appear among
	// this entry set's own UUIDs become additional roots.
	for parentUUID, children := range childrenOf {
		if _, ok := byUUID[parentUUID]; ok {
			continue
		}
		for _, child := range children {
			node, err := build(child)
			if err != nil {
				return nil, err
			}
			roots = append(roots, node)
		}
	}

	// Anything still unvisited at this point belongs entirely to a parent
	// cycle (every node on its ancestor chain only ever reaches other cycle
	// members, so neither the root pass nor the orphan pass above ever
	// reaches it) — build will report ErrCycleDetected for it.
	for uuid, e := range byUUID {
		if visited[uuid] {
			continue
		}
		if _, err := build(e); err != nil {
			return nil, err
		}
	}

	return roots, nil
}

// mergeTrees unions local and remote forests by UUID: a node present in
// both keeps the union of its children (deduplicated by UUID), and a node
// present only in one side is kept as-is.
func (m *merger) mergeTrees(localRoots, remoteRoots []*MessageNode) []*MessageNode {
	merged := make(map[string]*MessageNode)

	var collect func(nodes []*MessageNode)
	collect = func(nodes []*MessageNode) {
		for _, n := range nodes {
			if n.Entry.UUID != nil {
				merged[*n.Entry.UUID] = n
			}
			collect(n.Children)
		}
	}
	collect(localRoots)

	for _, remoteRoot := range remoteRoots {
		m.mergeNodeInto(remoteRoot, merged)
	}

	m.countBranches(merged)

	var roots []*MessageNode
	for _, n := range merged {
		if n.Entry.ParentUUID == nil || merged[*n.Entry.ParentUUID] == nil {
			roots = append(roots, n)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool {
		return lessTimestamp(roots[i].Entry.Timestamp, roots[j].Entry.Timestamp)
	})
	return roots
}

// mergeNodeInto splices node (and its descendants) into merged, by UUID.
func (m *merger) mergeNodeInto(node *MessageNode, merged map[string]*MessageNode) {
	if node.Entry.UUID == nil {
		return
	}
	uuid := *node.Entry.UUID

	var toRecurse []*MessageNode
	if existing, ok := merged[uuid]; ok {
		for _, child := range node.Children {
			if !hasChildUUID(existing, child) {
				existing.Children = append(existing.Children, child)
			}
			if child.Entry.UUID != nil {
				toRecurse = append(toRecurse, child)
			}
		}
	} else {
		merged[uuid] = node
		// node's parent may only have surfaced via the other side, e.g. a
		// remote chain whose earlier links weren't part of the synced entry
		// set, so buildTree treated node as its own forest root. If that
		// parent is already in merged, splice node under it instead of
		// leaving it reachable only through its own uuid key.
		if node.Entry.ParentUUID != nil {
			if parent, ok := merged[*node.Entry.ParentUUID]; ok && !hasChildUUID(parent, node) {
				parent.Children = append(parent.Children, node)
			}
		}
		toRecurse = append(toRecurse, node.Children...)
	}

	for _, child := range toRecurse {
		m.mergeNodeInto(child, merged)
	}
}

func hasChildUUID(parent *MessageNode, child *MessageNode) bool {
	if child.Entry.UUID == nil {
		return false
	}
	for _, c := range parent.Children {
		if c.Entry.UUID != nil && *c.Entry.UUID == *child.Entry.UUID {
			return true
		}
	}
	return false
}

func (m *merger) countBranches(nodes map[string]*MessageNode) {
	for _, n := range nodes {
		if len(n.Children) > 1 {
			m.stats.BranchesDetected++
		}
	}
}

// mergeByTimestamp combines two lists of non-UUID entries, sorts by
// timestamp, and drops byte-identical duplicates.
func (m *merger) mergeByTimestamp(local, remote []*session.Entry) []*session.Entry {
	all := make([]*session.Entry, 0, len(local)+len(remote))
	all = append(all, local...)
	all = append(all, remote...)
	sortEntriesByTimestamp(all)

	seen := make(map[string]bool, len(all))
	unique := make([]*session.Entry, 0, len(all))
	for _, e := range all {
		data, err := e.MarshalJSON()
		if err != nil {
			unique = append(unique, e)
			continue
		}
		key := string(data)
		if seen[key] {
			m.stats.DuplicatesRemoved++
			continue
		}
		seen[key] = true
		unique = append(unique, e)
	}
	return unique
}

func sortEntriesByTimestamp(entries []*session.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return lessTimestamp(entries[i].Timestamp, entries[j].Timestamp)
	})
}
