// Package versioncheck checks GitHub for a newer released version of the
// CLI and prints a one-line notice when the running binary is out of date.
// Every failure mode here is silent: a sync operation should never be
// interrupted because GitHub is unreachable.
package versioncheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/claudesync/cli/internal/logging"
)

// CheckAndNotify checks, at most once per checkInterval, whether a newer
// release than currentVersion is available, and writes a short notice to
// out if so. hidden callers (hidden subcommands, non-interactive scripting
// contexts) should pass skip=true to bypass the check entirely. currentVersion
// of "" or "dev" is treated as a development build and never checked.
func CheckAndNotify(ctx context.Context, configDir, currentVersion string, skip bool, out io.Writer) {
	if skip {
		return
	}
	if currentVersion == "" || currentVersion == "dev" {
		return
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return
	}

	path := cacheFilePath(configDir)
	cache, err := loadCache(path)
	if err != nil {
		cache = &Cache{}
	}

	if time.Since(cache.LastCheckTime) < checkInterval {
		return
	}

	latest, err := fetchLatestVersion(ctx)

	cache.LastCheckTime = time.Now()
	if saveErr := saveCache(path, cache); saveErr != nil {
		logging.Debug(ctx, "version check: failed to save cache", "error", saveErr.Error())
	}

	if err != nil {
		logging.Debug(ctx, "version check: failed to fetch latest version", "error", err.Error())
		return
	}

	if isOutdated(currentVersion, latest) {
		printNotification(out, currentVersion, latest)
	}
}

func cacheFilePath(configDir string) string {
	return filepath.Join(configDir, cacheFileName)
}

func loadCache(path string) (*Cache, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the resolved configuration directory
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		return nil, fmt.Errorf("parsing cache: %w", err)
	}
	return &cache, nil
}

func saveCache(path string, cache *Cache) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".version_check_tmp_")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("renaming cache file: %w", err)
	}
	return nil
}

func fetchLatestVersion(ctx context.Context) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, githubAPIURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "claude-sync-cli")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching release info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	return parseGitHubRelease(body)
}

func parseGitHubRelease(body []byte) (string, error) {
	var release GitHubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("parsing JSON: %w", err)
	}
	if release.Prerelease {
		return "", errors.New("only prerelease versions available")
	}
	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}
	return release.TagName, nil
}

// isOutdated reports whether current is semantically older than latest.
func isOutdated(current, latest string) bool {
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}
	return semver.Compare(current, latest) < 0
}

func updateCommand() string {
	execPath, err := os.Executable()
	if err != nil {
		return "curl -fsSL https://claudesync.dev/install.sh | bash"
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		realPath = execPath
	}
	if strings.Contains(realPath, "/Cellar/") || strings.Contains(realPath, "/homebrew/") {
		return "brew upgrade claude-sync"
	}
	return "curl -fsSL https://claudesync.dev/install.sh | bash"
}

func printNotification(out io.Writer, current, latest string) {
	fmt.Fprintf(out, "\nA newer version of claude-sync is available: %s (current: %s)\nRun '%s' to update.\n",
		latest, current, updateCommand())
}
