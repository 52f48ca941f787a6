package sync

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStatus_ReportsSessionCountsAndBranch(t *testing.T) {
	orch, _, repoPath := newTestOrchestrator(t)
	claudeDir := t.TempDir()

	writeConversationFile(t, filepath.Join(claudeDir, "proj", "session-a.jsonl"), `{"type":"user","message":"hi"}`)
	writeConversationFile(t, filepath.Join(repoPath, "projects", "proj", "session-b.jsonl"), `{"type":"user","message":"hi"}`)

	st, err := orch.BuildStatus(context.Background(), claudeDir, false, false)
	require.NoError(t, err)

	assert.Equal(t, repoPath, st.RepoPath)
	assert.Equal(t, "git", st.Backend)
	assert.Equal(t, "main", st.Branch)
	assert.Equal(t, 1, st.LocalSessionCount)
	assert.True(t, st.SyncRepoDirExists)
	assert.Equal(t, 1, st.SyncRepoSessionCount)
	assert.Nil(t, st.LocalFiles)
	assert.Nil(t, st.LatestReport)
}

func TestBuildStatus_FilesRequestedPopulatesListing(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)
	claudeDir := t.TempDir()
	writeConversationFile(t, filepath.Join(claudeDir, "proj", "session-a.jsonl"),
		`{"type":"user","message":"hi"}`,
		`{"type":"assistant","message":"yo"}`,
	)

	st, err := orch.BuildStatus(context.Background(), claudeDir, true, false)
	require.NoError(t, err)
	require.Len(t, st.LocalFiles, 1)
	assert.Equal(t, "proj/session-a.jsonl", st.LocalFiles[0].RelativePath)
	assert.Equal(t, 2, st.LocalFiles[0].MessageCount)
}

func TestBuildStatus_NoSyncRepoDirYet(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)
	claudeDir := t.TempDir()

	st, err := orch.BuildStatus(context.Background(), claudeDir, false, false)
	require.NoError(t, err)
	assert.False(t, st.SyncRepoDirExists)
	assert.Equal(t, 0, st.SyncRepoSessionCount)
}
