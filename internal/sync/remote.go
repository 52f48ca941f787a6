package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/claudesync/cli/internal/config"
	"github.com/claudesync/cli/internal/paths"
	"github.com/claudesync/cli/internal/scm"
	"github.com/claudesync/cli/internal/validation"
)

// ErrRemoteNotFound is returned by RemoveRemote when the named remote isn't
// configured.
var ErrRemoteNotFound = errors.New("sync: remote not found")

// RemoteInfo describes one configured remote.
type RemoteInfo struct {
	Name string
	URL  string
}

// ListRemotes returns every remote configured on repo, along with each
// one's URL.
func ListRemotes(ctx context.Context, repo scm.Port) ([]RemoteInfo, error) {
	names, err := repo.ListRemotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing remotes: %w", err)
	}

	infos := make([]RemoteInfo, 0, len(names))
	for _, name := range names {
		url, err := repo.GetRemoteURL(ctx, name)
		if err != nil && !errors.Is(err, scm.ErrNoSuchRemote) {
			return nil, fmt.Errorf("getting url for remote %s: %w", name, err)
		}
		infos = append(infos, RemoteInfo{Name: name, URL: url})
	}
	return infos, nil
}

// SetRemote validates url and configures it as name on repo, updating and
// persisting config.State.HasRemote when name is "origin".
func SetRemote(ctx context.Context, repo scm.Port, layout *paths.Layout, state *config.State, name, url string) error {
	if err := validation.ValidateRemoteURL(url); err != nil {
		return err
	}

	if err := repo.SetRemote(ctx, name, url); err != nil {
		return fmt.Errorf("setting remote %s: %w", name, err)
	}

	if name == "origin" && !state.HasRemote {
		state.HasRemote = true
		if err := state.Save(layout.StatePath()); err != nil {
			return fmt.Errorf("saving sync state: %w", err)
		}
	}
	return nil
}

// RemoveRemote removes name from repo, clearing config.State.HasRemote when
// name is "origin".
func RemoveRemote(ctx context.Context, repo scm.Port, layout *paths.Layout, state *config.State, name string) error {
	has, err := repo.HasRemote(ctx, name)
	if err != nil {
		return fmt.Errorf("checking remote %s: %w", name, err)
	}
	if !has {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, name)
	}

	if err := repo.RemoveRemote(ctx, name); err != nil {
		return fmt.Errorf("removing remote %s: %w", name, err)
	}

	if name == "origin" && state.HasRemote {
		state.HasRemote = false
		if err := state.Save(layout.StatePath()); err != nil {
			return fmt.Errorf("saving sync state: %w", err)
		}
	}
	return nil
}
