package sync

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/scm"
)

// InitOptions configures Init.
type InitOptions struct {
	RepoPath     string
	RemoteURL    string
	IsClonedRepo bool
}

// Init opens repoPath as a repository (creating it if it doesn't already
// exist), attaches a remote if remoteURL is given, persists the resulting
// config.State, and seeds config.toml with defaults if one isn't already
// present.
func Init(ctx context.Context, repo scm.Port, layout *paths.Layout, opts InitOptions) (*config.State, error) {
	if err := layout.EnsureConfigDir(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(opts.RepoPath); err == nil {
		if openErr := repo.Open(ctx, opts.RepoPath); openErr != nil {
			if !errors.Is(openErr, scm.ErrNotARepository) {
				return nil, fmt.Errorf("opening existing repository at %s: %w", opts.RepoPath, openErr)
			}
			if err := repo.Init(ctx, opts.RepoPath); err != nil {
				return nil, fmt.Errorf("initializing repository at %s: %w", opts.RepoPath, err)
			}
		}
	} else {
		if err := repo.Init(ctx, opts.RepoPath); err != nil {
			return nil, fmt.Errorf("initializing repository at %s: %w", opts.RepoPath, err)
		}
	}

	hasRemote := false
	if opts.RemoteURL != "" {
		already, err := repo.HasRemote(ctx, "origin")
		if err != nil {
			return nil, fmt.Errorf("checking for existing remote: %w", err)
		}
		if !already {
			if err := repo.SetRemote(ctx, "origin", opts.RemoteURL); err != nil {
				return nil, fmt.Errorf("adding remote origin: %w", err)
			}
		}
		hasRemote = true
	}

	state := &config.State{
		SyncRepoPath: opts.RepoPath,
		HasRemote:    hasRemote,
		IsClonedRepo: opts.IsClonedRepo,
	}
	if err := state.Save(layout.StatePath()); err != nil {
		return nil, fmt.Errorf("saving sync state: %w", err)
	}

	if _, err := os.Stat(layout.ConfigPath()); os.IsNotExist(err) {
		if err := config.DefaultFilterConfig().Save(layout.ConfigPath()); err != nil {
			return nil, fmt.Errorf("saving default filter configuration: %w", err)
		}
	}

	return state, nil
}
