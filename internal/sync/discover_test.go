package sync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_FindsAndSortsConversationFiles(t *testing.T) {
	base := t.TempDir()
	writeConversationFile(t, filepath.Join(base, "proj-b", "session-1.jsonl"), `{"type":"user","message":"hi"}`)
	writeConversationFile(t, filepath.Join(base, "proj-a", "session-1.jsonl"), `{"type":"user","message":"hi"}`)
	require.NoError(t, os.WriteFile(filepath.Join(base, "proj-a", "notes.txt"), []byte("not a conversation"), 0o644))

	found, err := Discover(base, nil)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, filepath.Join("proj-a", "session-1.jsonl"), found[0].RelativePath)
	assert.Equal(t, filepath.Join("proj-b", "session-1.jsonl"), found[1].RelativePath)
}

func TestDiscover_SkipsFilesFailingPredicate(t *testing.T) {
	base := t.TempDir()
	writeConversationFile(t, filepath.Join(base, "proj", "keep.jsonl"), `{"type":"user","message":"hi"}`)
	writeConversationFile(t, filepath.Join(base, "proj", "skip.jsonl"), `{"type":"user","message":"hi"}`)

	predicate := func(path string) bool {
		return filepath.Base(path) == "keep.jsonl"
	}

	found, err := Discover(base, predicate)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join("proj", "keep.jsonl"), found[0].RelativePath)
}

func TestDiscover_SkipsUnparseableFiles(t *testing.T) {
	base := t.TempDir()
	writeConversationFile(t, filepath.Join(base, "proj", "good.jsonl"), `{"type":"user","message":"hi"}`)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "proj"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "proj", "bad.jsonl"), []byte("not json at all"), 0o644))

	found, err := Discover(base, nil)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, filepath.Join("proj", "good.jsonl"), found[0].RelativePath)
}

func TestDiscover_MissingBaseDirectoryYieldsEmptyResult(t *testing.T) {
	found, err := Discover(filepath.Join(t.TempDir(), "does-not-exist"), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestLargeFiles_FlagsFilesAtOrAboveThreshold(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.jsonl")
	large := filepath.Join(dir, "large.jsonl")
	require.NoError(t, os.WriteFile(small, []byte("tiny"), 0o644))
	require.NoError(t, os.WriteFile(large, make([]byte, LargeFileWarningBytes), 0o644))

	flagged := LargeFiles([]string{small, large})
	require.Len(t, flagged, 1)
	assert.Equal(t, large, flagged[0])
}

func TestExtractProjectName_ReturnsLastNonEmptySegment(t *testing.T) {
	assert.Equal(t, "myproject", ExtractProjectName("-Users-abc-Documents-GitHub-myproject"))
	assert.Equal(t, "single", ExtractProjectName("single"))
	assert.Equal(t, "abc", ExtractProjectName("-abc-"))
}

func TestFindColliding_GroupsOnlyDuplicateProjectNames(t *testing.T) {
	projectsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(projectsDir, "-Users-alice-myproject"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(projectsDir, "-Users-bob-myproject"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(projectsDir, "-Users-alice-unique"), 0o755))

	colliding, err := FindColliding(projectsDir)
	require.NoError(t, err)
	require.Contains(t, colliding, "myproject")
	assert.Len(t, colliding["myproject"], 2)
	assert.NotContains(t, colliding, "unique")
}

func TestFindColliding_MissingDirectoryYieldsEmptyMap(t *testing.T) {
	colliding, err := FindColliding(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, colliding)
}
