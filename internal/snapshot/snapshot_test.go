package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudesync/cli/internal/history"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCreate_CapturesExistingFilesOnly(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jsonl", "hello")
	missing := filepath.Join(dir, "missing.jsonl")

	s, err := Create(history.OperationPush, []string{a, missing}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), s.Files[a])
	_, ok := s.Files[missing]
	assert.False(t, ok)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jsonl", "hello")

	s, err := Create(history.OperationPull, []string{a}, nil, nil)
	require.NoError(t, err)

	path, err := s.Save(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.ID, loaded.ID)
	assert.Equal(t, []byte("hello"), loaded.Files[a])
}

func TestCreateDifferential_NoBaseIsFullSnapshot(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.jsonl", "v1")
	snapshotsDir := filepath.Join(dir, "snapshots")

	s, err := CreateDifferential(history.OperationPush, []string{a}, nil, nil, snapshotsDir)
	require.NoError(t, err)
	assert.Empty(t, s.BaseID)
	assert.Equal(t, []byte("v1"), s.Files[a])
}

func TestCreateDifferential_OnlyStoresChanges(t *testing.T) {
	dir := t.TempDir()
	snapshotsDir := filepath.Join(dir, "snapshots")
	a := writeFile(t, dir, "a.jsonl", "v1")
	b := writeFile(t, dir, "b.jsonl", "unchanged")

	base, err := CreateDifferential(history.OperationPush, []string{a, b}, nil, nil, snapshotsDir)
	require.NoError(t, err)
	_, err = base.Save(snapshotsDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a, []byte("v2"), 0o644))

	diff, err := CreateDifferential(history.OperationPush, []string{a, b}, nil, nil, snapshotsDir)
	require.NoError(t, err)
	assert.Equal(t, base.ID, diff.BaseID)
	assert.Equal(t, []byte("v2"), diff.Files[a])
	_, bIncluded := diff.Files[b]
	assert.False(t, bIncluded, "unchanged file should not be duplicated into the differential snapshot")
}

func TestCreateDifferential_TracksDeletedFiles(t *testing.T) {
	dir := t.TempDir()
	snapshotsDir := filepath.Join(dir, "snapshots")
	a := writeFile(t, dir, "a.jsonl", "v1")
	b := writeFile(t, dir, "b.jsonl", "v1")

	base, err := CreateDifferential(history.OperationPush, []string{a, b}, nil, nil, snapshotsDir)
	require.NoError(t, err)
	_, err = base.Save(snapshotsDir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(b))

	diff, err := CreateDifferential(history.OperationPush, []string{a}, nil, nil, snapshotsDir)
	require.NoError(t, err)
	assert.Contains(t, diff.DeletedFiles, b)
}

func TestReconstructFullState_WalksBaseChain(t *testing.T) {
	dir := t.TempDir()
	snapshotsDir := filepath.Join(dir, "snapshots")
	a := writeFile(t, dir, "a.jsonl", "v1")
	b := writeFile(t, dir, "b.jsonl", "v1")

	base, err := CreateDifferential(history.OperationPush, []string{a, b}, nil, nil, snapshotsDir)
	require.NoError(t, err)
	_, err = base.Save(snapshotsDir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a, []byte("v2"), 0o644))
	diff, err := CreateDifferential(history.OperationPush, []string{a, b}, nil, nil, snapshotsDir)
	require.NoError(t, err)
	_, err = diff.Save(snapshotsDir)
	require.NoError(t, err)

	state, err := diff.ReconstructFullState(snapshotsDir)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), state[a])
	assert.Equal(t, []byte("v1"), state[b])
}

func TestFindLatest_PicksMostRecentOfKind(t *testing.T) {
	dir := t.TempDir()
	older, err := Create(history.OperationPush, nil, nil, nil)
	require.NoError(t, err)
	older.Timestamp = time.Now().Add(-time.Hour)
	_, err = older.Save(dir)
	require.NoError(t, err)

	newer, err := Create(history.OperationPush, nil, nil, nil)
	require.NoError(t, err)
	_, err = newer.Save(dir)
	require.NoError(t, err)

	pullSnapshot, err := Create(history.OperationPull, nil, nil, nil)
	require.NoError(t, err)
	_, err = pullSnapshot.Save(dir)
	require.NoError(t, err)

	latest, err := FindLatest(history.OperationPush, dir)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestFindLatest_NoSnapshotsDirReturnsNil(t *testing.T) {
	latest, err := FindLatest(history.OperationPush, filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRestore_WritesFilesWithinAllowedBase(t *testing.T) {
	srcDir := t.TempDir()
	a := writeFile(t, srcDir, "a.jsonl", "original")

	s, err := Create(history.OperationPull, []string{a}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a, []byte("modified locally"), 0o644))

	require.NoError(t, s.Restore(srcDir, filepath.Join(srcDir, "snapshots")))

	content, err := os.ReadFile(a)
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))
}

func TestOrphaned_FlagsBrokenChain(t *testing.T) {
	dir := t.TempDir()
	s := &Snapshot{ID: newID(), OperationType: history.OperationPush, BaseID: "does-not-exist", Timestamp: time.Now()}
	_, err := s.Save(dir)
	require.NoError(t, err)

	orphaned, err := Orphaned(dir)
	require.NoError(t, err)
	require.Len(t, orphaned, 1)
	assert.Equal(t, s.ID, orphaned[0].ID)
}
