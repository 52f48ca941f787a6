package sync

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/paths"
)

func TestSetRemote_ConfiguresOriginAndPersistsState(t *testing.T) {
	repo := newFakePort("main")
	layout := &paths.Layout{ConfigDir: t.TempDir()}
	require.NoError(t, layout.EnsureConfigDir())
	state := &config.State{}

	require.NoError(t, SetRemote(context.Background(), repo, layout, state, "origin", "https://example.com/sync.git"))
	assert.True(t, state.HasRemote)

	url, err := repo.GetRemoteURL(context.Background(), "origin")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/sync.git", url)

	reloaded, err := config.LoadState(layout.StatePath())
	require.NoError(t, err)
	assert.True(t, reloaded.HasRemote)
}

func TestSetRemote_RejectsInvalidURL(t *testing.T) {
	repo := newFakePort("main")
	layout := &paths.Layout{ConfigDir: t.TempDir()}
	require.NoError(t, layout.EnsureConfigDir())
	state := &config.State{}

	err := SetRemote(context.Background(), repo, layout, state, "origin", "not a url")
	assert.Error(t, err)
}

func TestListRemotes_ReturnsNamesAndURLs(t *testing.T) {
	repo := newFakePort("main")
	require.NoError(t, repo.SetRemote(context.Background(), "origin", "https://example.com/a.git"))
	require.NoError(t, repo.SetRemote(context.Background(), "backup", "https://example.com/b.git"))

	infos, err := ListRemotes(context.Background(), repo)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "backup", infos[0].Name)
	assert.Equal(t, "origin", infos[1].Name)
}

func TestRemoveRemote_ClearsStateWhenOriginRemoved(t *testing.T) {
	repo := newFakePort("main")
	layout := &paths.Layout{ConfigDir: t.TempDir()}
	require.NoError(t, layout.EnsureConfigDir())
	state := &config.State{HasRemote: true}
	require.NoError(t, repo.SetRemote(context.Background(), "origin", "https://example.com/sync.git"))

	require.NoError(t, RemoveRemote(context.Background(), repo, layout, state, "origin"))
	assert.False(t, state.HasRemote)

	has, err := repo.HasRemote(context.Background(), "origin")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestRemoveRemote_NotFound(t *testing.T) {
	repo := newFakePort("main")
	layout := &paths.Layout{ConfigDir: t.TempDir()}
	require.NoError(t, layout.EnsureConfigDir())
	state := &config.State{}

	err := RemoveRemote(context.Background(), repo, layout, state, "origin")
	assert.ErrorIs(t, err, ErrRemoteNotFound)
}
