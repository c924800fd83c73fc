package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnCompileStart(ctx, "direct", 3)
	p.OnCompileComplete(ctx, "direct", CompileStats{Nodes: 3}, time.Second, nil)
	p.OnRenderStart(ctx, "svg")
	p.OnRenderComplete(ctx, "svg", true, 1024, time.Second, nil)

	NoopStoreHooks{}.OnStoreOp(ctx, "file", "get", time.Millisecond, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/documents")
	h.OnResponse(ctx, "GET", "/documents", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	SetPipelineHooks(nil)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks(nil) should keep existing hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestCustomHooksCalled(t *testing.T) {
	Reset()
	defer Reset()

	h := &testPipelineHooks{}
	SetPipelineHooks(h)

	ctx := context.Background()
	Pipeline().OnCompileStart(ctx, "space", 4)
	Pipeline().OnCompileComplete(ctx, "space", CompileStats{Nodes: 4, Diagnostics: 1}, time.Millisecond, nil)

	if h.starts != 1 || h.completes != 1 {
		t.Errorf("starts = %d, completes = %d, want 1, 1", h.starts, h.completes)
	}
	if h.last.Diagnostics != 1 {
		t.Errorf("last.Diagnostics = %d, want 1", h.last.Diagnostics)
	}
}

type testPipelineHooks struct {
	NoopPipelineHooks
	starts, completes int
	last              CompileStats
}

func (h *testPipelineHooks) OnCompileStart(context.Context, string, int) { h.starts++ }
func (h *testPipelineHooks) OnCompileComplete(_ context.Context, _ string, s CompileStats, _ time.Duration, _ error) {
	h.completes++
	h.last = s
}

type testStoreHooks struct{ NoopStoreHooks }

type testHTTPHooks struct{ NoopHTTPHooks }
