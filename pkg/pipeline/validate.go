package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

// Checker verifies the packaging metadata of individual modules.
// metadata.FileProvider implements it.
type Checker interface {
	// CheckSuiteMember verifies an absorbed module.
	CheckSuiteMember(m module.Module) error
	// CheckRoot verifies a suite root.
	CheckRoot(m module.Module, categories []string) error
}

// Report is the outcome of [Runner.Validate].
type Report struct {
	Forest suite.Result
	// Warnings lists problems that do not fail validation.
	Warnings []string
}

// Validate checks that mods can be released without building anything.
//
// It fails when there are no modules, when the modules of a suite declare
// different release lines, or when the Provider implements [Checker] and
// reports a problem. Modules of another release line only produce a warning.
func (r *Runner) Validate(ctx context.Context, mods []module.Module, opts Options) (*Report, error) {
	if len(mods) == 0 {
		return nil, errors.New(errors.ErrCodeNoDistributableModules,
			"no modules found, make sure the reactor lists the plugin modules")
	}
	if err := opts.setDefaults(mods); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if _, _, err := filterLine(mods, opts.ReleaseVersion); err != nil {
		return nil, err
	}
	logger := r.logger()

	report := &Report{}
	forest, err := r.classify(ctx, mods, opts, logger)
	if err != nil {
		return nil, err
	}
	report.Forest = forest

	checker, _ := r.Provider.(Checker)
	for _, e := range forest.Entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := e.Root.ReleaseLine
		for _, m := range e.Members {
			if m.ReleaseLine != line {
				return nil, errors.New(errors.ErrCodeInconsistentReleaseLine,
					"modules of suite %s declare different release lines (%q and %q)",
					e.Root.Label(), line, m.ReleaseLine)
			}
			if m.ReleaseLine != "" && !release.SameLine(m.ReleaseLine, opts.ReleaseVersion) {
				w := fmt.Sprintf("%s targets release %s but %s is expected, it will be ignored",
					m.Label(), m.ReleaseLine, opts.ReleaseVersion)
				report.Warnings = append(report.Warnings, w)
				logger.Warn(w)
			}
		}
		if checker == nil {
			continue
		}
		for _, m := range e.Absorbed() {
			if err := checker.CheckSuiteMember(m); err != nil {
				return nil, err
			}
		}
		if err := checker.CheckRoot(e.Root, opts.Categories); err != nil {
			return nil, err
		}
	}
	return report, nil
}
