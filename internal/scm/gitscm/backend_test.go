package gitscm

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claudesync/cli/internal/scm"
)

var testAuthor = scm.Author{Name: "Test User", Email: "test@example.com"}

func newInitializedRepo(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := New()
	require.NoError(t, b.Init(context.Background(), dir))
	return b, dir
}

func writeAndCommit(t *testing.T, b *Backend, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	require.NoError(t, b.StageAll(context.Background(), dir))
	id, err := b.Commit(context.Background(), "add "+name, testAuthor)
	require.NoError(t, err)
	return id
}

func TestInitAndOpen(t *testing.T) {
	dir := t.TempDir()
	b := New()
	require.NoError(t, b.Init(context.Background(), dir))

	other := New()
	require.NoError(t, other.Open(context.Background(), dir))
}

func TestOpen_NotARepository(t *testing.T) {
	dir := t.TempDir()
	b := New()
	err := b.Open(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, scm.ErrNotARepository)
}

func TestCommitAndHeadCommit(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()

	id := writeAndCommit(t, b, dir, "a.txt", "hello")
	assert.NotEmpty(t, id)

	head, err := b.HeadCommit(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, head)
}

func TestCommit_NothingToCommit(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()
	writeAndCommit(t, b, dir, "a.txt", "hello")

	require.NoError(t, b.StageAll(ctx, dir))
	_, err := b.Commit(ctx, "empty", testAuthor)
	assert.ErrorIs(t, err, scm.ErrNothingToCommit)
}

func TestHasUncommittedChanges(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()

	has, err := b.HasUncommittedChanges(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	has, err = b.HasUncommittedChanges(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCreateBranchAndCheckout(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()
	writeAndCommit(t, b, dir, "a.txt", "hello")

	require.NoError(t, b.CreateBranch(ctx, "feature", ""))
	has, err := b.HasBranch(ctx, "feature")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, b.CheckoutBranch(ctx, "feature"))
	current, err := b.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "feature", current)
}

func TestLog_NewestFirst(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()

	first := writeAndCommit(t, b, dir, "a.txt", "1")
	second := writeAndCommit(t, b, dir, "b.txt", "2")

	head, err := b.HeadCommit(ctx)
	require.NoError(t, err)

	commits, err := b.Log(ctx, head, 0)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, second, commits[0].ID)
	assert.Equal(t, first, commits[1].ID)
}

func TestLog_RespectsLimit(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()
	writeAndCommit(t, b, dir, "a.txt", "1")
	writeAndCommit(t, b, dir, "b.txt", "2")

	head, err := b.HeadCommit(ctx)
	require.NoError(t, err)

	commits, err := b.Log(ctx, head, 1)
	require.NoError(t, err)
	assert.Len(t, commits, 1)
}

func TestReadFileAtCommit(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()
	id := writeAndCommit(t, b, dir, "a.txt", "hello world")

	content, err := b.ReadFileAtCommit(ctx, id, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
}

func TestReadFileAtCommit_Missing(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()
	id := writeAndCommit(t, b, dir, "a.txt", "hello")

	_, err := b.ReadFileAtCommit(ctx, id, "missing.txt")
	assert.Error(t, err)
}

func TestIsAncestor(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()
	first := writeAndCommit(t, b, dir, "a.txt", "1")
	second := writeAndCommit(t, b, dir, "b.txt", "2")

	isAnc, err := b.IsAncestor(ctx, first, second)
	require.NoError(t, err)
	assert.True(t, isAnc)

	isAnc, err = b.IsAncestor(ctx, second, first)
	require.NoError(t, err)
	assert.False(t, isAnc)
}

func TestResetSoft(t *testing.T) {
	b, dir := newInitializedRepo(t)
	ctx := context.Background()
	first := writeAndCommit(t, b, dir, "a.txt", "1")
	writeAndCommit(t, b, dir, "b.txt", "2")

	require.NoError(t, b.ResetSoft(ctx, first))
	head, err := b.HeadCommit(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, head)

	// b.txt stays staged in the index after a soft reset.
	has, err := b.HasUncommittedChanges(ctx)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSetRemoteAndHasRemote(t *testing.T) {
	b, _ := newInitializedRepo(t)
	ctx := context.Background()

	has, err := b.HasRemote(ctx, "origin")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, b.SetRemote(ctx, "origin", "https://example.com/repo.git"))
	has, err = b.HasRemote(ctx, "origin")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestPushPull_BetweenTwoRepos(t *testing.T) {
	ctx := context.Background()

	// A bare remote, so pushing the currently-checked-out branch of a
	// non-bare repo isn't rejected by git's denyCurrentBranch safeguard.
	bareDir := t.TempDir()
	require.NoError(t, exec.Command("git", "init", "--bare", bareDir).Run())

	seedDir := t.TempDir()
	seed := New()
	require.NoError(t, seed.Init(ctx, seedDir))
	writeAndCommit(t, seed, seedDir, "a.txt", "1")
	branch, err := seed.CurrentBranch(ctx)
	require.NoError(t, err)
	require.NoError(t, seed.SetRemote(ctx, "origin", bareDir))
	require.NoError(t, seed.Push(ctx, "origin", branch))
	// Point the bare remote's HEAD at the pushed branch so a later Clone's
	// checkout of the default branch resolves to a real ref.
	require.NoError(t, exec.Command("git", "-C", bareDir, "symbolic-ref", "HEAD", "refs/heads/"+branch).Run())

	cloneDir := t.TempDir()
	clone := New()
	require.NoError(t, clone.Clone(ctx, bareDir, cloneDir))

	cloneHead := writeAndCommit(t, clone, cloneDir, "b.txt", "2")
	require.NoError(t, clone.Push(ctx, "origin", branch))

	other := New()
	require.NoError(t, other.Clone(ctx, bareDir, t.TempDir()))
	otherHead, err := other.HeadCommit(ctx)
	require.NoError(t, err)
	assert.Equal(t, cloneHead, otherHead)
}
