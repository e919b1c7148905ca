// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about orchestration and backend operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (Prometheus, OpenTelemetry, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetOrchestratorHooks(&myHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Orchestrator().OnOperationStart(ctx, "add", url)
//	// ... poll until complete ...
//	observability.Orchestrator().OnOperationComplete(ctx, "add", url, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Orchestrator Hooks
// =============================================================================

// OrchestratorHooks receives events from the request orchestrator.
type OrchestratorHooks interface {
	// Operation events; op is "list", "add" or "remove".
	OnOperationStart(ctx context.Context, op, target string)
	OnOperationComplete(ctx context.Context, op, target string, duration time.Duration, err error)

	// OnQueueDepth records the pending queue length after it changes.
	OnQueueDepth(ctx context.Context, depth int)

	// OnRegistrySize records the registry size after it changes.
	OnRegistrySize(ctx context.Context, size int)

	// OnDependencyDiscovered records a git dependency found in a manifest.
	OnDependencyDiscovered(ctx context.Context, parent, url string)

	// OnAddAbandoned records a queued URL dropped without a successful add.
	OnAddAbandoned(ctx context.Context, url, reason string)
}

// =============================================================================
// Backend Hooks
// =============================================================================

// BackendHooks receives events from backend implementations.
type BackendHooks interface {
	// OnClone records a completed clone of url.
	OnClone(ctx context.Context, url string, duration time.Duration, err error)

	// OnScan records a scan of the packages directory.
	OnScan(ctx context.Context, packages int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopOrchestratorHooks is a no-op implementation of OrchestratorHooks.
type NoopOrchestratorHooks struct{}

func (NoopOrchestratorHooks) OnOperationStart(context.Context, string, string) {}
func (NoopOrchestratorHooks) OnOperationComplete(context.Context, string, string, time.Duration, error) {
}
func (NoopOrchestratorHooks) OnQueueDepth(context.Context, int)                      {}
func (NoopOrchestratorHooks) OnRegistrySize(context.Context, int)                    {}
func (NoopOrchestratorHooks) OnDependencyDiscovered(context.Context, string, string) {}
func (NoopOrchestratorHooks) OnAddAbandoned(context.Context, string, string)         {}

// NoopBackendHooks is a no-op implementation of BackendHooks.
type NoopBackendHooks struct{}

func (NoopBackendHooks) OnClone(context.Context, string, time.Duration, error) {}
func (NoopBackendHooks) OnScan(context.Context, int, time.Duration, error)     {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	orchestratorHooks OrchestratorHooks = NoopOrchestratorHooks{}
	backendHooks      BackendHooks      = NoopBackendHooks{}
	hooksMu           sync.RWMutex
)

// SetOrchestratorHooks registers custom orchestrator hooks.
// This should be called once at application startup before any orchestration.
func SetOrchestratorHooks(h OrchestratorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		orchestratorHooks = h
	}
}

// SetBackendHooks registers custom backend hooks.
// This should be called once at application startup before any backend operations.
func SetBackendHooks(h BackendHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		backendHooks = h
	}
}

// Orchestrator returns the registered orchestrator hooks.
func Orchestrator() OrchestratorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return orchestratorHooks
}

// Backend returns the registered backend hooks.
func Backend() BackendHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return backendHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	orchestratorHooks = NoopOrchestratorHooks{}
	backendHooks = NoopBackendHooks{}
}
