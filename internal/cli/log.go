// Package cli implements the pluginrelease command-line interface.
//
// The CLI discovers plugin modules from a Maven reactor or a module
// descriptor file, classifies them into suites, validates their packaging
// metadata, runs releases and previews the resulting update site.
//
// # Commands
//
// The main commands are:
//   - classify: Show the suites a set of modules forms
//   - validate: Check module metadata before a release
//   - release: Merge the registry and build the update site
//   - registry show: Inspect a published or local registry
//   - serve: Preview an update site over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes the observability hooks (HTTP requests, snapshot I/O, merge
// events) to the logger.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pluginrelease/pkg/pipeline"
)

// newLogger creates the CLI logger. Records carry a short wall-clock
// timestamp ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress measures one command and reports it as a single record.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time in milliseconds.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// logStats writes the per-stage timings of a release run at debug level.
func logStats(l *log.Logger, runID string, s pipeline.Stats) {
	l.Debug("stage timings",
		"run", runID,
		"merge", s.MergeTime.Round(time.Microsecond),
		"publish", s.PublishTime.Round(time.Microsecond),
		"save", s.SaveTime.Round(time.Microsecond))
}
