package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recordingHooks struct {
	NoopPipelineHooks
	NoopCacheHooks
	NoopSourceHooks

	mu     sync.Mutex
	events []string
}

func (r *recordingHooks) record(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingHooks) OnCacheMiss(_ context.Context, keyType string) {
	r.record("miss:" + keyType)
}

func (r *recordingHooks) OnSourceCall(_ context.Context, _, call string) {
	r.record("call:" + call)
}

func TestDefaultsAreNoop(t *testing.T) {
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T", Pipeline())
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() = %T", Cache())
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Errorf("Source() = %T", Source())
	}
}

func TestSetHooksRoutesEvents(t *testing.T) {
	t.Cleanup(Reset)
	r := &recordingHooks{}
	SetCacheHooks(r)
	SetSourceHooks(r)

	ctx := context.Background()
	Cache().OnCacheMiss(ctx, "layout")
	Source().OnSourceCall(ctx, "/repo", "git log")
	Pipeline().OnLayoutStart(ctx, 3)

	want := []string{"miss:layout", "call:git log"}
	if strings.Join(r.events, "|") != strings.Join(want, "|") {
		t.Errorf("events = %v, want %v", r.events, want)
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("pipeline hooks changed without SetPipelineHooks")
	}
}

func TestSetNilKeepsCurrent(t *testing.T) {
	t.Cleanup(Reset)
	r := &recordingHooks{}
	SetPipelineHooks(r)
	SetPipelineHooks(nil)
	SetSourceHooks(nil)
	if Pipeline() != PipelineHooks(r) {
		t.Error("nil pipeline hooks replaced the installed ones")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("nil source hooks replaced the default")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetCacheHooks(&recordingHooks{})
		}()
		go func() {
			defer wg.Done()
			Cache().OnCacheHit(context.Background(), "artifact")
		}()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnLayoutComplete(ctx, 5, time.Millisecond, nil)
	h.OnCacheMiss(ctx, "layout")
	h.OnFetchComplete(ctx, "/repo", 0, time.Millisecond, errors.New("bad object"))
	h.OnSourceCallComplete(ctx, "github.com/o/r", "GET /repos/o/r/commits", time.Millisecond, nil)

	out := buf.String()
	for _, want := range []string{"computed layout", "lanes=5", "cache miss", "bad object", "source call done", "/repos/o/r/commits"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooksQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel}))
	h.OnCacheHit(context.Background(), "layout")
	if buf.Len() != 0 {
		t.Errorf("debug event logged at info level: %q", buf.String())
	}
}
