// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about release runs, snapshot transfers, and HTTP calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, which keeps the core
// packages free of import cycles and observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetReleaseHooks(&myReleaseHooks{})
//	    observability.SetSnapshotHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Release().OnClassify(ctx, modules, suites, shared)
//	observability.Snapshot().OnLoad(ctx, backend, size, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Release Hooks
// =============================================================================

// ReleaseHooks receives events from the release pipeline.
type ReleaseHooks interface {
	// OnClassify records the forest computed for a run.
	OnClassify(ctx context.Context, modules, suites, shared int)

	// OnMerge records the merge of one suite.
	OnMerge(ctx context.Context, plugin, version string, skipped bool)

	// OnPublish records the end of a run.
	OnPublish(ctx context.Context, updated, skipped int, duration time.Duration, err error)
}

// =============================================================================
// Snapshot Hooks
// =============================================================================

// SnapshotHooks receives events from registry snapshot stores.
type SnapshotHooks interface {
	// OnLoad records a snapshot read. size is -1 when no snapshot exists.
	OnLoad(ctx context.Context, backend string, size int, duration time.Duration, err error)

	// OnSave records a snapshot write.
	OnSave(ctx context.Context, backend string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopReleaseHooks is a no-op implementation of ReleaseHooks.
type NoopReleaseHooks struct{}

func (NoopReleaseHooks) OnClassify(context.Context, int, int, int)                 {}
func (NoopReleaseHooks) OnMerge(context.Context, string, string, bool)             {}
func (NoopReleaseHooks) OnPublish(context.Context, int, int, time.Duration, error) {}

// NoopSnapshotHooks is a no-op implementation of SnapshotHooks.
type NoopSnapshotHooks struct{}

func (NoopSnapshotHooks) OnLoad(context.Context, string, int, time.Duration, error) {}
func (NoopSnapshotHooks) OnSave(context.Context, string, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	releaseHooks  ReleaseHooks  = NoopReleaseHooks{}
	snapshotHooks SnapshotHooks = NoopSnapshotHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetReleaseHooks registers custom release hooks.
// This should be called once at application startup before any release runs.
func SetReleaseHooks(h ReleaseHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		releaseHooks = h
	}
}

// SetSnapshotHooks registers custom snapshot hooks.
func SetSnapshotHooks(h SnapshotHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		snapshotHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Release returns the registered release hooks.
func Release() ReleaseHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return releaseHooks
}

// Snapshot returns the registered snapshot hooks.
func Snapshot() SnapshotHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return snapshotHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	releaseHooks = NoopReleaseHooks{}
	snapshotHooks = NoopSnapshotHooks{}
	httpHooks = NoopHTTPHooks{}
}
