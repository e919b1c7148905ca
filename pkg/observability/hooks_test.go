package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	o := NoopOrchestratorHooks{}
	o.OnOperationStart(ctx, "add", "https://example.com/a.git")
	o.OnOperationComplete(ctx, "add", "https://example.com/a.git", time.Second, nil)
	o.OnQueueDepth(ctx, 3)
	o.OnRegistrySize(ctx, 10)
	o.OnDependencyDiscovered(ctx, "com.example.a", "https://example.com/b.git")
	o.OnAddAbandoned(ctx, "https://example.com/c.git", "failed")

	b := NoopBackendHooks{}
	b.OnClone(ctx, "https://example.com/a.git", time.Second, nil)
	b.OnScan(ctx, 4, time.Millisecond, nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Orchestrator().(NoopOrchestratorHooks); !ok {
		t.Error("Orchestrator() should return NoopOrchestratorHooks by default")
	}
	if _, ok := Backend().(NoopBackendHooks); !ok {
		t.Error("Backend() should return NoopBackendHooks by default")
	}

	customOrchestrator := &testOrchestratorHooks{}
	SetOrchestratorHooks(customOrchestrator)
	if Orchestrator() != customOrchestrator {
		t.Error("SetOrchestratorHooks should set custom hooks")
	}

	customBackend := &testBackendHooks{}
	SetBackendHooks(customBackend)
	if Backend() != customBackend {
		t.Error("SetBackendHooks should set custom hooks")
	}

	Reset()
	if _, ok := Orchestrator().(NoopOrchestratorHooks); !ok {
		t.Error("Reset() should restore NoopOrchestratorHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testOrchestratorHooks{}
	SetOrchestratorHooks(custom)

	SetOrchestratorHooks(nil)

	if Orchestrator() != custom {
		t.Error("SetOrchestratorHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testOrchestratorHooks struct{ NoopOrchestratorHooks }
type testBackendHooks struct{ NoopBackendHooks }
