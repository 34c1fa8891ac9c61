package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// logger. The CLI registers it in verbose mode.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

// Register installs h as release, snapshot and HTTP hooks.
func (h *LogHooks) Register() {
	SetReleaseHooks(h)
	SetSnapshotHooks(h)
	SetHTTPHooks(h)
}

func (h *LogHooks) OnClassify(_ context.Context, modules, suites, shared int) {
	h.Logger.Debug("classified modules", "modules", modules, "suites", suites, "shared", shared)
}

func (h *LogHooks) OnMerge(_ context.Context, plugin, version string, skipped bool) {
	h.Logger.Debug("merge", "plugin", plugin, "version", version, "skipped", skipped)
}

func (h *LogHooks) OnPublish(_ context.Context, updated, skipped int, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("release failed", "duration", duration, "err", err)
		return
	}
	h.Logger.Debug("release finished", "updated", updated, "skipped", skipped, "duration", duration)
}

func (h *LogHooks) OnLoad(_ context.Context, backend string, size int, duration time.Duration, err error) {
	h.Logger.Debug("snapshot load", "backend", backend, "bytes", size, "duration", duration, "err", err)
}

func (h *LogHooks) OnSave(_ context.Context, backend string, size int, duration time.Duration, err error) {
	h.Logger.Debug("snapshot save", "backend", backend, "bytes", size, "duration", duration, "err", err)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, statusCode int, duration time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", statusCode, "duration", duration)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
