package versioncheck

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestIsOutdated(t *testing.T) {
	tests := []struct {
		current string
		latest  string
		want    bool
		desc    string
	}{
		{"1.0.0", "1.0.1", true, "patch version bump"},
		{"1.0.0", "1.1.0", true, "minor version bump"},
		{"1.0.0", "2.0.0", true, "major version bump"},
		{"1.0.1", "1.0.0", false, "current is newer"},
		{"2.0.0", "1.9.9", false, "current major is higher"},
		{"1.0.0", "1.0.0", false, "same version"},
		{"v1.0.0", "v1.0.1", true, "with v prefix"},
		{"v1.0.0", "1.0.1", true, "mixed v prefix"},
		{"1.0.0", "v1.0.1", true, "mixed v prefix reversed"},
		{"1.0.0-rc1", "1.0.0", true, "prerelease in current"},
		{"1.0.0", "1.0.1-rc1", true, "prerelease in latest is still newer"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := isOutdated(tt.current, tt.latest)
			if got != tt.want {
				t.Errorf("isOutdated(%q, %q) = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}

func TestCacheReadWrite(t *testing.T) {
	configDir := t.TempDir()
	path := cacheFilePath(configDir)

	original := &Cache{LastCheckTime: time.Now().Round(time.Second)}
	if err := saveCache(path, original); err != nil {
		t.Fatalf("saveCache() error = %v", err)
	}

	loaded, err := loadCache(path)
	if err != nil {
		t.Fatalf("loadCache() error = %v", err)
	}
	if loaded.LastCheckTime.Sub(original.LastCheckTime).Abs() > time.Second {
		t.Errorf("LastCheckTime = %v, want %v", loaded.LastCheckTime, original.LastCheckTime)
	}
}

func withTestServer(t *testing.T, version string, prerelease bool) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		release := GitHubRelease{TagName: version, Prerelease: prerelease}
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck // test helper
		json.NewEncoder(w).Encode(release)
	}))
	t.Cleanup(server.Close)

	original := githubAPIURL
	githubAPIURL = server.URL
	t.Cleanup(func() { githubAPIURL = original })
	return server.URL
}

func TestFetchLatestVersion(t *testing.T) {
	withTestServer(t, "v1.2.3", false)

	version, err := fetchLatestVersion(context.Background())
	if err != nil {
		t.Fatalf("fetchLatestVersion() error = %v", err)
	}
	if version != "v1.2.3" {
		t.Errorf("fetchLatestVersion() = %q, want v1.2.3", version)
	}
}

func TestFetchLatestVersionPrerelease(t *testing.T) {
	withTestServer(t, "v2.0.0-rc1", true)

	if _, err := fetchLatestVersion(context.Background()); err == nil {
		t.Fatal("fetchLatestVersion() expected error for prerelease, got nil")
	}
}

func TestFetchLatestVersionServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	original := githubAPIURL
	githubAPIURL = server.URL
	t.Cleanup(func() { githubAPIURL = original })

	if _, err := fetchLatestVersion(context.Background()); err == nil {
		t.Fatal("fetchLatestVersion() expected error for 500 response, got nil")
	}
}

func TestParseGitHubRelease(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"valid release", `{"tag_name": "v1.2.3", "prerelease": false}`, "v1.2.3", false},
		{"prerelease", `{"tag_name": "v2.0.0-rc1", "prerelease": true}`, "", true},
		{"empty tag", `{"tag_name": "", "prerelease": false}`, "", true},
		{"invalid json", `not json`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseGitHubRelease([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("parseGitHubRelease() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("parseGitHubRelease() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckAndNotify_SkipsWhenToldTo(t *testing.T) {
	withTestServer(t, "v9.9.9", false)
	var buf bytes.Buffer
	CheckAndNotify(context.Background(), t.TempDir(), "1.0.0", true, &buf)
	if buf.Len() != 0 {
		t.Errorf("expected no output when skip is set, got %q", buf.String())
	}
}

func TestCheckAndNotify_SkipsDevVersion(t *testing.T) {
	withTestServer(t, "v9.9.9", false)
	var buf bytes.Buffer
	CheckAndNotify(context.Background(), t.TempDir(), "dev", false, &buf)
	if buf.Len() != 0 {
		t.Errorf("expected no output for dev version, got %q", buf.String())
	}
}

func TestCheckAndNotify_SkipsEmptyVersion(t *testing.T) {
	withTestServer(t, "v9.9.9", false)
	var buf bytes.Buffer
	CheckAndNotify(context.Background(), t.TempDir(), "", false, &buf)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty version, got %q", buf.String())
	}
}

func TestCheckAndNotify_SkipsWhenCacheIsFresh(t *testing.T) {
	withTestServer(t, "v9.9.9", false)
	configDir := t.TempDir()

	if err := saveCache(cacheFilePath(configDir), &Cache{LastCheckTime: time.Now()}); err != nil {
		t.Fatalf("saveCache() error = %v", err)
	}

	var buf bytes.Buffer
	CheckAndNotify(context.Background(), configDir, "1.0.0", false, &buf)
	if buf.Len() != 0 {
		t.Errorf("expected no output when cache is fresh, got %q", buf.String())
	}
}

func TestCheckAndNotify_PrintsNotificationWhenOutdated(t *testing.T) {
	withTestServer(t, "v2.0.0", false)
	var buf bytes.Buffer
	CheckAndNotify(context.Background(), t.TempDir(), "1.0.0", false, &buf)

	output := buf.String()
	if !strings.Contains(output, "v2.0.0") {
		t.Errorf("expected notification with latest version, got %q", output)
	}
	if !strings.Contains(output, "1.0.0") {
		t.Errorf("expected notification with current version, got %q", output)
	}
}

func TestCheckAndNotify_NoNotificationWhenUpToDate(t *testing.T) {
	withTestServer(t, "v1.0.0", false)
	var buf bytes.Buffer
	CheckAndNotify(context.Background(), t.TempDir(), "1.0.0", false, &buf)
	if buf.Len() != 0 {
		t.Errorf("expected no output when up to date, got %q", buf.String())
	}
}

func TestCheckAndNotify_FetchFailureUpdatesCacheToPreventRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	original := githubAPIURL
	githubAPIURL = server.URL
	t.Cleanup(func() { githubAPIURL = original })

	configDir := t.TempDir()
	var buf bytes.Buffer
	CheckAndNotify(context.Background(), configDir, "1.0.0", false, &buf)

	if buf.Len() != 0 {
		t.Errorf("expected no output on fetch failure, got %q", buf.String())
	}

	cache, err := loadCache(filepath.Join(configDir, cacheFileName))
	if err != nil {
		t.Fatalf("loadCache() error = %v", err)
	}
	if time.Since(cache.LastCheckTime) > time.Minute {
		t.Errorf("cache LastCheckTime not updated after fetch failure: %v", cache.LastCheckTime)
	}
}
