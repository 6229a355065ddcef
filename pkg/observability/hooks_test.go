package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	NoopViewHooks{}.OnValidate(12, 3, time.Millisecond)

	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "diagram.json")
	p.OnLoadComplete(ctx, "diagram.json", 42, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "render")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "render", 1024)

	s := NoopStoreHooks{}
	s.OnLoad(ctx, "sqlite", "doc-1", time.Millisecond, nil)
	s.OnSave(ctx, "sqlite", "doc-1", 512, time.Millisecond, nil)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/documents/doc-1")
	h.OnResponse(ctx, "GET", "/documents/doc-1", 200, time.Millisecond)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := View().(NoopViewHooks); !ok {
		t.Error("View() should return NoopViewHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	tests := []struct {
		name string
		set  func()
		ok   func() bool
	}{
		{"view", func() { SetViewHooks(customView) }, func() bool { return View() == customView }},
		{"pipeline", func() { SetPipelineHooks(customPipeline) }, func() bool { return Pipeline() == customPipeline }},
		{"cache", func() { SetCacheHooks(customCache) }, func() bool { return Cache() == customCache }},
		{"store", func() { SetStoreHooks(customStore) }, func() bool { return Store() == customStore }},
		{"http", func() { SetHTTPHooks(customHTTP) }, func() bool { return HTTP() == customHTTP }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.set()
			if !tt.ok() {
				t.Errorf("custom %s hooks were not registered", tt.name)
			}
		})
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	SetViewHooks(customView)
	SetViewHooks(nil)

	if View() != customView {
		t.Error("SetViewHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testViewHooks struct{ NoopViewHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

var (
	customView     = &testViewHooks{}
	customPipeline = &testPipelineHooks{}
	customCache    = &testCacheHooks{}
	customStore    = &testStoreHooks{}
	customHTTP     = &testHTTPHooks{}
)
