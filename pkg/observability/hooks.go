// Package observability lets the engine's callers watch it work.
//
// Pipeline stages, cache lookups, and history sources report events to the
// hooks registered here. Nothing is registered by default and every event
// goes to a no-op, so library users pay nothing for instrumentation they do
// not want. The CLI installs [LogHooks] to surface events under --verbose:
//
//	hooks := observability.NewLogHooks(logger)
//	observability.SetPipelineHooks(hooks)
//	observability.SetCacheHooks(hooks)
//	observability.SetSourceHooks(hooks)
//
// Emitters fetch the current hooks at the point of use:
//
//	observability.Pipeline().OnFetchStart(ctx, src.Name(), ref)
package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// PipelineHooks observes the fetch, layout, and render stages.
type PipelineHooks interface {
	OnFetchStart(ctx context.Context, source, ref string)
	OnFetchComplete(ctx context.Context, source string, commitCount int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, commitCount int)
	OnLayoutComplete(ctx context.Context, width int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks observes cache traffic. keyType is "layout" or "artifact";
// size is the node count of a layout or the byte length of an artifact.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// SourceHooks observes the calls a history source makes to its backend:
// git subprocesses for local repositories, REST requests for GitHub.
// source names the repository and call describes the operation, such as
// "git log --all" or "GET /repos/o/r/commits".
type SourceHooks interface {
	OnSourceCall(ctx context.Context, source, call string)
	OnSourceCallComplete(ctx context.Context, source, call string, duration time.Duration, err error)
}

// NoopPipelineHooks ignores every pipeline event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string, string)                     {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                                 {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSourceHooks ignores every source event.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnSourceCall(context.Context, string, string)                             {}
func (NoopSourceHooks) OnSourceCallComplete(context.Context, string, string, time.Duration, error) {}

// hookSet is swapped as a whole so readers never take a lock.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	source   SourceHooks
}

var (
	current atomic.Pointer[hookSet]
	writeMu sync.Mutex
)

func init() { Reset() }

func update(fn func(*hookSet)) {
	writeMu.Lock()
	defer writeMu.Unlock()
	next := *current.Load()
	fn(&next)
	current.Store(&next)
}

// SetPipelineHooks installs h. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks installs h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetSourceHooks installs h. A nil h is ignored.
func SetSourceHooks(h SourceHooks) {
	if h != nil {
		update(func(s *hookSet) { s.source = h })
	}
}

// Pipeline returns the installed pipeline hooks.
func Pipeline() PipelineHooks { return current.Load().pipeline }

// Cache returns the installed cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// Source returns the installed source hooks.
func Source() SourceHooks { return current.Load().source }

// Reset reinstalls the no-op hooks.
func Reset() {
	writeMu.Lock()
	defer writeMu.Unlock()
	current.Store(&hookSet{
		pipeline: NoopPipelineHooks{},
		cache:    NoopCacheHooks{},
		source:   NoopSourceHooks{},
	})
}
