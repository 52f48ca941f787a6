package gitscm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/claudesync/cli/internal/scm"
)

// StageAll stages every modification, addition, and deletion under root.
func (b *Backend) StageAll(ctx context.Context, root string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return wrapGitErr("stage all", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return wrapGitErr("stage all", err)
	}
	return nil
}

// HasUncommittedChanges reports whether the working tree has any staged or
// unstaged modifications.
//
// This shells out to `git status --porcelain` instead of go-git's
// Worktree.Status because go-git doesn't honor the user's global
// core.excludesfile, which produces false positives for files the user has
// globally ignored (editor swap files, OS metadata) but never told this
// repository about.
func (b *Backend) HasUncommittedChanges(ctx context.Context) (bool, error) {
	b.mu.Lock()
	path := b.path
	b.mu.Unlock()

	cmd := exec.CommandContext(noopCtx(ctx), "git", "status", "--porcelain")
	cmd.Dir = path
	out, err := cmd.Output()
	if err != nil {
		return false, fmt.Errorf("gitscm: status: %w", err)
	}
	return len(strings.TrimSpace(string(out))) > 0, nil
}

// Commit records the index as a new commit on the current branch.
func (b *Backend) Commit(ctx context.Context, message string, author scm.Author) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return "", err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", wrapGitErr("commit", err)
	}

	status, err := wt.Status()
	if err != nil {
		return "", wrapGitErr("commit", err)
	}
	if status.IsClean() {
		return "", scm.ErrNothingToCommit
	}

	now := time.Now()
	sig := object.Signature{Name: author.Name, Email: author.Email, When: now}

	hash, err := wt.Commit(message, &git.CommitOptions{
		Author:    &sig,
		Committer: &sig,
	})
	if err != nil {
		return "", wrapGitErr("commit", err)
	}
	return hash.String(), nil
}

// HeadCommit returns the commit ID the current branch points at.
func (b *Backend) HeadCommit(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", wrapGitErr("head commit", err)
	}
	return head.Hash().String(), nil
}

// ResetSoft moves the current branch's tip to commitID without touching the
// working tree or index.
func (b *Backend) ResetSoft(ctx context.Context, commitID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return wrapGitErr("reset soft", err)
	}
	if err := wt.Reset(&git.ResetOptions{
		Commit: plumbing.NewHash(commitID),
		Mode:   git.SoftReset,
	}); err != nil {
		return wrapGitErr("reset soft", err)
	}
	return nil
}
