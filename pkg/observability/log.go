package observability

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. Failures are
// logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks creates hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) done(msg string, err error, keyvals ...any) {
	if err != nil {
		h.logger.Warn(msg, append(keyvals, "err", err)...)
		return
	}
	h.logger.Debug(msg, keyvals...)
}

func (h *LogHooks) OnFetchStart(_ context.Context, source, ref string) {
	h.logger.Debug("fetch history", "source", source, "ref", ref)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, source string, n int, d time.Duration, err error) {
	h.done("fetched history", err, "source", source, "commits", n, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, n int) {
	h.logger.Debug("compute layout", "commits", n)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, width int, d time.Duration, err error) {
	h.done("computed layout", err, "lanes", width, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render", "formats", strings.Join(formats, ","))
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.done("rendered", err, "formats", strings.Join(formats, ","), "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "size", size)
}

func (h *LogHooks) OnSourceCall(_ context.Context, source, call string) {
	h.logger.Debug("source call", "source", source, "call", call)
}

func (h *LogHooks) OnSourceCallComplete(_ context.Context, source, call string, d time.Duration, err error) {
	h.done("source call done", err, "source", source, "call", call, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ SourceHooks   = (*LogHooks)(nil)
)
