// Package telemetry sends anonymous, opt-in usage analytics: which
// subcommand ran, whether it succeeded, and how many conversations it
// touched. No conversation content or file paths are ever reported.
package telemetry

import (
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/posthog/posthog-go"
	"github.com/spf13/cobra"
)

var (
	// PostHogAPIKey is set at build time for production.
	PostHogAPIKey = "phc_development_key"
	// PostHogEndpoint is set at build time for production.
	PostHogEndpoint = "https://eu.i.posthog.com"
)

// Client is the telemetry interface every command holds and closes on exit.
type Client interface {
	TrackCommand(cmd *cobra.Command, conversationCount int, succeeded bool)
	Close()
}

// NoOpClient is used when telemetry is opted out or unavailable.
type NoOpClient struct{}

func (n *NoOpClient) TrackCommand(_ *cobra.Command, _ int, _ bool) {}
func (n *NoOpClient) Close()                                       {}

type silentLogger struct{}

func (silentLogger) Logf(_ string, _ ...interface{})   {}
func (silentLogger) Debugf(_ string, _ ...interface{}) {}
func (silentLogger) Warnf(_ string, _ ...interface{})  {}
func (silentLogger) Errorf(_ string, _ ...interface{}) {}

// PostHogClient is the real telemetry client, backed by a machine-scoped
// anonymous ID rather than anything tied to the user's identity.
type PostHogClient struct {
	client     posthog.Client
	machineID  string
	cliVersion string
	mu         sync.RWMutex
}

// NewClient returns a PostHogClient when telemetryEnabled is true, or a
// NoOpClient otherwise (nil means "not asked yet", which also defaults to
// disabled until the user opts in).
//
//nolint:ireturn // factory function: returns NoOpClient or PostHogClient based on settings
func NewClient(version string, telemetryEnabled *bool) Client {
	if telemetryEnabled == nil || !*telemetryEnabled {
		return &NoOpClient{}
	}

	id, err := machineid.ProtectedID("claude-sync")
	if err != nil {
		return &NoOpClient{}
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 100 * time.Millisecond,
		}).DialContext,
		TLSHandshakeTimeout:   100 * time.Millisecond,
		ResponseHeaderTimeout: 100 * time.Millisecond,
	}

	client, err := posthog.NewWithConfig(PostHogAPIKey, posthog.Config{
		Endpoint:           PostHogEndpoint,
		ShutdownTimeout:    100 * time.Millisecond,
		BatchUploadTimeout: 200 * time.Millisecond,
		Transport:          transport,
		Logger:             silentLogger{},
		DisableGeoIP:       posthog.Ptr(true),
		DefaultEventProperties: posthog.NewProperties().
			Set("cli_version", version).
			Set("os", runtime.GOOS).
			Set("arch", runtime.GOARCH),
	})
	if err != nil {
		return &NoOpClient{}
	}

	return &PostHogClient{
		client:     client,
		machineID:  id,
		cliVersion: version,
	}
}

// TrackCommand records that cmd ran, how many conversations it touched, and
// whether it succeeded. Hidden commands are skipped.
func (p *PostHogClient) TrackCommand(cmd *cobra.Command, conversationCount int, succeeded bool) {
	if cmd == nil || cmd.Hidden {
		return
	}

	p.mu.RLock()
	id := p.machineID
	c := p.client
	p.mu.RUnlock()

	if c == nil {
		return
	}

	props := posthog.NewProperties().
		Set("command", cmd.CommandPath()).
		Set("conversation_count", conversationCount).
		Set("succeeded", succeeded)

	//nolint:errcheck // best-effort telemetry, failures should not affect the CLI
	_ = c.Enqueue(posthog.Capture{
		DistinctId: id,
		Event:      "cli_command_executed",
		Properties: props,
	})
}

// Close flushes any pending events.
func (p *PostHogClient) Close() {
	p.mu.RLock()
	c := p.client
	p.mu.RUnlock()

	if c != nil {
		_ = c.Close()
	}
}
