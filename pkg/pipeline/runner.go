package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/observability"
	"github.com/matzehuels/pluginrelease/pkg/registry"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/snapshot"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

// Downloader fetches a remote file to a local path.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// Runner executes release runs.
//
// The Runner holds no per-run state; one Runner may serve several runs with
// different options.
type Runner struct {
	// Source provides the previous registry. Nil means no previous release.
	Source snapshot.Source
	// Sink receives the merged registry. Nil skips saving.
	Sink snapshot.Sink
	// Provider describes suites that need repackaging.
	Provider release.Provider
	// Downloader fetches artifacts of unchanged plugins.
	Downloader Downloader
	Logger     *log.Logger
}

// Execute runs the complete release pipeline over mods.
func (r *Runner) Execute(ctx context.Context, mods []module.Module, opts Options) (*Result, error) {
	if err := opts.setDefaults(mods); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	minor, _ := release.MinorVersion(opts.ReleaseVersion)

	result := &Result{
		RunID:          uuid.NewString(),
		ReleaseVersion: opts.ReleaseVersion,
		DownloadDir:    minor,
		DryRun:         opts.DryRun,
	}
	logger := r.logger().With("run", result.RunID)
	if opts.DryRun {
		logger.Info("running in dry-run mode", "release", opts.ReleaseVersion)
	}

	// Stage 1: Filter
	kept, ignored, err := filterLine(mods, opts.ReleaseVersion)
	if err != nil {
		return nil, err
	}
	for _, m := range ignored {
		logger.Warn("module ignored, other release line",
			"module", m.Label(), "line", m.ReleaseLine, "expected", minor)
	}
	result.Ignored = ignored

	// Stage 2: Classify
	forest, err := r.classify(ctx, kept, opts, logger)
	if err != nil {
		return nil, err
	}
	result.Forest = forest

	// Stage 3: Load
	reg, err := r.load(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	// Stage 4: Merge
	mergeStart := time.Now()
	coord := &release.Coordinator{
		Registry:    reg,
		ReleaseLine: opts.ReleaseVersion,
		DownloadDir: minor,
		Provider:    r.Provider,
		Paths:       opts.Paths,
		Categories:  opts.Categories,
		Now:         opts.Now,
		Logger:      logger,
	}
	plan, err := coord.MergeAll(ctx, forest)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	result.Plan = plan
	result.Stats.MergeTime = time.Since(mergeStart)
	for _, o := range plan.Outcomes {
		observability.Release().OnMerge(ctx, o.ID(), o.Entry.Root.Identity.Version, o.Skipped)
	}
	logger.Info("merged registry",
		"updated", len(plan.Updated()),
		"skipped", len(plan.SkippedRoots()),
		"duration", result.Stats.MergeTime)

	// Stage 5: Publish
	if opts.OutputDir != "" {
		publishStart := time.Now()
		files, err := r.publish(ctx, plan, minor, opts, logger)
		result.Stats.PublishTime = time.Since(publishStart)
		observability.Release().OnPublish(ctx, len(plan.Updated()), len(plan.SkippedRoots()), result.Stats.PublishTime, err)
		if err != nil {
			return nil, fmt.Errorf("publish: %w", err)
		}
		result.Files = files
	}

	// Stage 6: Save
	if opts.DryRun || r.Sink == nil {
		return result, nil
	}
	saveStart := time.Now()
	data, err := plan.Registry.Marshal()
	if err != nil {
		return nil, err
	}
	if err := r.Sink.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("save registry: %w", err)
	}
	result.Stats.SaveTime = time.Since(saveStart)
	logger.Info("saved registry", "plugins", plan.Registry.Len(), "bytes", len(data))
	return result, nil
}

// Classify filters mods to the release line of opts and groups them into
// suites, applying the empty-forest and shared-member rules of Execute.
func (r *Runner) Classify(ctx context.Context, mods []module.Module, opts Options) (suite.Result, error) {
	if err := opts.setDefaults(mods); err != nil {
		return suite.Result{}, fmt.Errorf("invalid options: %w", err)
	}
	kept, _, err := filterLine(mods, opts.ReleaseVersion)
	if err != nil {
		return suite.Result{}, err
	}
	return r.classify(ctx, kept, opts, r.logger())
}

func (r *Runner) classify(ctx context.Context, mods []module.Module, opts Options, logger *log.Logger) (suite.Result, error) {
	forest := suite.Classify(mods)
	shared := forest.Shared()
	observability.Release().OnClassify(ctx, len(mods), len(forest.Entries), len(shared))

	if forest.IsEmpty() {
		return suite.Result{}, errors.New(errors.ErrCodeNoDistributableModules,
			"no distributable modules for release %s", opts.ReleaseVersion)
	}
	for _, ext := range forest.External {
		logger.Debug("dependency outside the module set", "module", ext.From, "dependency", ext.Dependency)
	}
	for _, s := range shared {
		if opts.Strict {
			return suite.Result{}, errors.New(errors.ErrCodeAmbiguousSuite,
				"module %s belongs to %d suites", s.Module.Label(), len(s.Roots))
		}
		logger.Warn("module belongs to several suites", "module", s.Module.Label(), "suites", len(s.Roots))
	}
	logger.Info("classified modules", "modules", len(mods), "suites", len(forest.Entries))
	return forest, nil
}

func (r *Runner) load(ctx context.Context, logger *log.Logger) (*registry.Registry, error) {
	if r.Source == nil {
		return registry.New(), nil
	}
	data, ok, err := r.Source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Info("no previous registry, starting empty")
		return registry.New(), nil
	}
	reg, err := registry.Load(data)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded previous registry", "plugins", reg.Len())
	return reg, nil
}

// filterLine splits mods into those on the minor line of version and the
// rest. Modules without a release line are kept. A release line that is not
// a valid version fails the whole set.
func filterLine(mods []module.Module, version string) (kept, ignored []module.Module, err error) {
	want, err := release.MinorVersion(version)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range mods {
		if m.ReleaseLine == "" {
			kept = append(kept, m)
			continue
		}
		got, err := release.MinorVersion(m.ReleaseLine)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidVersion, err,
				"module %s has an invalid release line", m.Label())
		}
		if got == want {
			kept = append(kept, m)
		} else {
			ignored = append(ignored, m)
		}
	}
	return kept, ignored, nil
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}
