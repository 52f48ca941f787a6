package merge

import (
	"fmt"

	"github.com/claudesync/cli/internal/session"
)

// Stats describes the shape of a merge: how much came from each side, and
// what the merger had to reconcile.
type Stats struct {
	LocalMessages     int
	RemoteMessages    int
	MergedMessages    int
	DuplicatesRemoved int
	EditsResolved     int
	BranchesDetected  int
	TimestampMerged   int
}

// Result is the outcome of merging two copies of one session.
type Result struct {
	Entries []*session.Entry
	Stats   Stats
}

// ErrSessionIDMismatch is returned by Merge when local and remote don't
// share a session id — merging them would silently splice two unrelated
// conversations together.
type ErrSessionIDMismatch struct {
	Local, Remote string
}

func (e *ErrSessionIDMismatch) Error() string {
	return fmt.Sprintf("cannot merge sessions with different ids: %s vs %s", e.Local, e.Remote)
}

// merger holds the mutable state of one merge pass; a fresh merger is used
// per call to Merge.
type merger struct {
	stats Stats
}

// Merge combines local and remote into one ordered entry list, preserving
// every branch either side introduced and resolving same-UUID edits by
// timestamp (ties favor local, since local is what the caller is about to
// keep working from).
func Merge(local, remote *session.Session) (*Result, error) {
	if local.SessionID != remote.SessionID {
		return nil, &ErrSessionIDMismatch{Local: local.SessionID, Remote: remote.SessionID}
	}

	m := &merger{}
	m.stats.LocalMessages = local.MessageCount()
	m.stats.RemoteMessages = remote.MessageCount()

	localMap := buildUUIDMap(local.Entries)
	remoteMap := buildUUIDMap(remote.Entries)

	resolvedEdits, err := m.detectAndResolveEdits(localMap, remoteMap)
	if err != nil {
		return nil, err
	}

	localUUID, localNonUUID := partitionByUUID(local.Entries)
	remoteUUID, remoteNonUUID := partitionByUUID(remote.Entries)

	localRoots, err := m.buildTree(localUUID, resolvedEdits)
	if err != nil {
		return nil, fmt.Errorf("merging local side: %w", err)
	}
	remoteRoots, err := m.buildTree(remoteUUID, resolvedEdits)
	if err != nil {
		return nil, fmt.Errorf("merging remote side: %w", err)
	}

	mergedRoots := m.mergeTrees(localRoots, remoteRoots)

	var entries []*session.Entry
	for _, root := range mergedRoots {
		entries = append(entries, root.collectEntries()...)
	}

	nonUUIDMerged := m.mergeByTimestamp(localNonUUID, remoteNonUUID)
	m.stats.TimestampMerged = len(nonUUIDMerged)
	entries = append(entries, nonUUIDMerged...)

	sortEntriesByTimestamp(entries)
	m.stats.MergedMessages = len(entries)

	return &Result{Entries: entries, Stats: m.stats}, nil
}

func buildUUIDMap(entries []*session.Entry) map[string]*session.Entry {
	m := make(map[string]*session.Entry, len(entries))
	for _, e := range entries {
		if e.UUID != nil {
			m[*e.UUID] = e
		}
	}
	return m
}

func partitionByUUID(entries []*session.Entry) (withUUID, withoutUUID []*session.Entry) {
	for _, e := range entries {
		if e.UUID != nil {
			withUUID = append(withUUID, e)
		} else {
			withoutUUID = append(withoutUUID, e)
		}
	}
	return withUUID, withoutUUID
}

// detectAndResolveEdits finds UUIDs present on both sides whose serialized
// content differs and picks a winner by timestamp.
func (m *merger) detectAndResolveEdits(localMap, remoteMap map[string]*session.Entry) (map[string]*session.Entry, error) {
	resolved := make(map[string]*session.Entry)

	for uuid, localEntry := range localMap {
		remoteEntry, ok := remoteMap[uuid]
		if !ok {
			continue
		}

		localJSON, err := localEntry.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("serializing local entry %s: %w", uuid, err)
		}
		remoteJSON, err := remoteEntry.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("serializing remote entry %s: %w", uuid, err)
		}

		if !jsonEqual(localJSON, remoteJSON) {
			m.stats.EditsResolved++
			resolved[uuid] = resolveByTimestamp(localEntry, remoteEntry)
		} else {
			resolved[uuid] = localEntry
		}
	}

	return resolved, nil
}

// resolveByTimestamp picks remote only when it is strictly newer than
// local; every other case (remote older, remote missing a timestamp, both
// missing) keeps local.
func resolveByTimestamp(local, remote *session.Entry) *session.Entry {
	if local.Timestamp == nil {
		if remote.Timestamp != nil {
			return remote
		}
		return local
	}
	if remote.Timestamp == nil {
		return local
	}
	if *remote.Timestamp > *local.Timestamp {
		return remote
	}
	return local
}

// jsonEqual compares two entries' canonical serializations byte-for-byte.
// Entry.MarshalJSON always emits known fields in a fixed order and Extra
// keys sorted, so this is equivalent to a structural comparison without
// needing to round-trip through interface{}.
func jsonEqual(a, b []byte) bool {
	return string(a) == string(b)
}
