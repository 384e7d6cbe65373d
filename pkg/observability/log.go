package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogPipelineHooks writes pipeline events to a logger at debug level, and
// failures at warn level.
type LogPipelineHooks struct {
	Logger *log.Logger
}

// NewLogPipelineHooks returns hooks logging to logger.
func NewLogPipelineHooks(logger *log.Logger) *LogPipelineHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogPipelineHooks{Logger: logger}
}

func (h *LogPipelineHooks) done(msg string, err error, keyvals ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(keyvals, "err", err)...)
		return
	}
	h.Logger.Debug(msg, keyvals...)
}

func (h *LogPipelineHooks) OnLoadStart(_ context.Context, path string) {
	h.Logger.Debug("loading metadata", "path", path)
}

func (h *LogPipelineHooks) OnLoadComplete(_ context.Context, path string, typeCount int, d time.Duration, err error) {
	h.done("loaded metadata", err, "path", path, "types", typeCount, "took", d)
}

func (h *LogPipelineHooks) OnExtractComplete(_ context.Context, entities, members int) {
	h.Logger.Debug("extracted entities", "entities", entities, "members", members)
}

func (h *LogPipelineHooks) OnWalkStart(_ context.Context, entry string) {
	h.Logger.Debug("walking calls", "entry", entry)
}

func (h *LogPipelineHooks) OnWalkComplete(_ context.Context, entry string, methods, calls int, d time.Duration, err error) {
	h.done("walked calls", err, "entry", entry, "methods", methods, "calls", calls, "took", d)
}

func (h *LogPipelineHooks) OnRenderStart(_ context.Context, renderer, format string) {
	h.Logger.Debug("rendering", "renderer", renderer, "format", format)
}

func (h *LogPipelineHooks) OnRenderComplete(_ context.Context, renderer, format string, d time.Duration, err error) {
	h.done("rendered", err, "renderer", renderer, "format", format, "took", d)
}

// Ensure LogPipelineHooks implements PipelineHooks.
var _ PipelineHooks = (*LogPipelineHooks)(nil)
