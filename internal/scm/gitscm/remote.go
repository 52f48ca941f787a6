package gitscm

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"

	"github.com/claudesync/cli/internal/scm"
	"github.com/claudesync/cli/internal/validation"
)

// networkTimeout bounds fetch/push/pull the way the teacher's hook-invoked
// git commands are bounded, so an unreachable remote fails fast instead of
// hanging a sync operation indefinitely.
const networkTimeout = 2 * time.Minute

// SetRemote configures (creating or replacing) a remote named name.
func (b *Backend) SetRemote(ctx context.Context, name, url string) error {
	if err := validation.ValidateRemoteURL(url); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return err
	}

	_ = repo.DeleteRemote(name) //nolint:errcheck // absent remote is fine to ignore
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})
	if err != nil {
		return wrapGitErr("set remote", err)
	}
	return nil
}

// HasRemote reports whether a remote by that name is configured.
func (b *Backend) HasRemote(ctx context.Context, name string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return false, err
	}
	_, err = repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return false, nil
		}
		return false, wrapGitErr("has remote", err)
	}
	return true, nil
}

// ListRemotes returns the names of every configured remote.
func (b *Backend) ListRemotes(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return nil, err
	}

	remotes, err := repo.Remotes()
	if err != nil {
		return nil, wrapGitErr("list remotes", err)
	}

	names := make([]string, 0, len(remotes))
	for _, r := range remotes {
		names = append(names, r.Config().Name)
	}
	return names, nil
}

// GetRemoteURL returns the URL configured for the named remote.
func (b *Backend) GetRemoteURL(ctx context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return "", err
	}

	remote, err := repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", scm.ErrNoSuchRemote
		}
		return "", wrapGitErr("get remote url", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return urls[0], nil
}

// RemoveRemote deletes the named remote.
func (b *Backend) RemoveRemote(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	repo, err := b.repository()
	if err != nil {
		return err
	}

	if err := repo.DeleteRemote(name); err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return scm.ErrNoSuchRemote
		}
		return wrapGitErr("remove remote", err)
	}
	return nil
}

// Fetch retrieves objects and refs for branch from the named remote.
//
// Shells out to the git CLI rather than go-git's Fetch: go-git doesn't
// invoke the system credential helper, so any remote requiring
// authentication (virtually all private HTTPS remotes) fails under go-git
// but works through the CLI, which does.
func (b *Backend) Fetch(ctx context.Context, remote, branch string) error {
	if err := validation.ValidateBranchName(branch); err != nil {
		return err
	}
	b.mu.Lock()
	path := b.path
	b.mu.Unlock()

	runCtx, cancel := context.WithTimeout(noopCtx(ctx), networkTimeout)
	defer cancel()

	refSpec := fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", branch, remote, branch)
	cmd := exec.CommandContext(runCtx, "git", "fetch", remote, refSpec) //nolint:gosec // remote/branch validated above
	cmd.Dir = path
	if out, err := cmd.CombinedOutput(); err != nil {
		if runCtx.Err() != nil {
			return fmt.Errorf("gitscm: fetch timed out after %s", networkTimeout)
		}
		return fmt.Errorf("gitscm: fetch: %s: %w", strings.TrimSpace(string(out)), err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openLocked(path)
}

// Push sends the named local branch to the named remote.
func (b *Backend) Push(ctx context.Context, remote, branch string) error {
	if err := validation.ValidateBranchName(branch); err != nil {
		return err
	}
	b.mu.Lock()
	path := b.path
	b.mu.Unlock()

	runCtx, cancel := context.WithTimeout(noopCtx(ctx), networkTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", "push", remote, branch) //nolint:gosec // remote/branch validated above
	cmd.Dir = path
	if out, err := cmd.CombinedOutput(); err != nil {
		if runCtx.Err() != nil {
			return fmt.Errorf("gitscm: push timed out after %s", networkTimeout)
		}
		if strings.Contains(string(out), "non-fast-forward") || strings.Contains(string(out), "rejected") {
			return fmt.Errorf("gitscm: push rejected (non-fast-forward): %s", strings.TrimSpace(string(out)))
		}
		return fmt.Errorf("gitscm: push: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Pull fetches and fast-forwards (or merges) branch from remote into the
// current branch.
func (b *Backend) Pull(ctx context.Context, remote, branch string) error {
	if err := validation.ValidateBranchName(branch); err != nil {
		return err
	}
	b.mu.Lock()
	path := b.path
	b.mu.Unlock()

	runCtx, cancel := context.WithTimeout(noopCtx(ctx), networkTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", "pull", "--no-rebase", remote, branch) //nolint:gosec // remote/branch validated above
	cmd.Dir = path
	if out, err := cmd.CombinedOutput(); err != nil {
		if runCtx.Err() != nil {
			return fmt.Errorf("gitscm: pull timed out after %s", networkTimeout)
		}
		return fmt.Errorf("gitscm: pull: %s: %w", strings.TrimSpace(string(out)), err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openLocked(path)
}
