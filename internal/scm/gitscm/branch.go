package gitscm

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/claudesync/cli/internal/validation"
)

// CurrentBranch returns the short name of the branch HEAD points to.
func (b *Backend) CurrentBranch(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", wrapGitErr("current branch", err)
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("gitscm: detached HEAD, not on a branch")
	}
	return head.Name().Short(), nil
}

// HasBranch reports whether a local branch by that name exists.
func (b *Backend) HasBranch(ctx context.Context, name string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return false, err
	}

	_, err = repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, wrapGitErr("has branch", err)
	}
	return true, nil
}

// CreateBranch creates a new branch named name pointing at startPoint. An
// empty startPoint means HEAD; if the repository has no commits yet the
// branch is left to be created as an orphan by the first commit.
func (b *Backend) CreateBranch(ctx context.Context, name, startPoint string) error {
	if err := validation.ValidateBranchName(name); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return err
	}

	var hash plumbing.Hash
	if startPoint == "" {
		head, headErr := repo.Head()
		if headErr != nil {
			if errors.Is(headErr, plumbing.ErrReferenceNotFound) {
				// Empty repository: defer the branch ref until the first
				// commit, which sets HEAD's symbolic target directly.
				return setSymbolicHead(repo, name)
			}
			return wrapGitErr("create branch", headErr)
		}
		hash = head.Hash()
	} else {
		resolved, resolveErr := repo.ResolveRevision(plumbing.Revision(startPoint))
		if resolveErr != nil {
			return wrapGitErr("resolve start point", resolveErr)
		}
		hash = *resolved
	}

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), hash)
	if err := repo.Storer.SetReference(ref); err != nil {
		return wrapGitErr("create branch", err)
	}
	return nil
}

// CheckoutBranch switches the working tree to the named branch.
//
// This shells out to the git CLI rather than using go-git's Worktree.Checkout,
// which is known to delete untracked files that aren't part of either commit's
// tree (go-git/go-git#970). claude-sync's working tree legitimately carries
// untracked agent-config files alongside the synced conversation mirror, so
// losing them on every checkout is not acceptable.
func (b *Backend) CheckoutBranch(ctx context.Context, name string) error {
	if err := validation.ValidateBranchName(name); err != nil {
		return err
	}
	b.mu.Lock()
	path := b.path
	b.mu.Unlock()

	cmd := exec.CommandContext(noopCtx(ctx), "git", "checkout", name)
	cmd.Dir = path
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("gitscm: checkout %s: %s: %w", name, strings.TrimSpace(string(out)), err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openLocked(path)
}

func setSymbolicHead(repo *git.Repository, branchName string) error {
	headRef := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branchName))
	return wrapGitErr("set symbolic head", repo.Storer.SetReference(headRef))
}
