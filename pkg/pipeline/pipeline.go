// Package pipeline runs a plugin release end to end.
//
// This package ties classification, registry merging and update-site
// publishing together so that the CLI and the preview server share one
// implementation.
//
// # Architecture
//
// [Runner.Execute] runs six stages:
//
//  1. Filter: keep the modules of the target release line
//  2. Classify: group modules into suites
//  3. Load: read the previous registry snapshot (absent means empty)
//  4. Merge: merge every suite into a copy of the registry
//  5. Publish: copy or download artifacts, build suite archives and the
//     update catalog
//  6. Save: write the merged registry to the sink, unless dry run
//
// A failure in stages 1 to 4 leaves every output untouched.
//
// # Usage
//
//	runner := &pipeline.Runner{
//	    Source:     snapshot.NewHTTPSource(url, client),
//	    Sink:       snapshot.NewFileStore("target/site/plugins.json"),
//	    Provider:   &metadata.FileProvider{OutputDir: "target/site"},
//	    Downloader: client,
//	    Logger:     logger,
//	}
//	result, err := runner.Execute(ctx, modules, pipeline.Options{
//	    ReleaseVersion: "0.10.1",
//	    OutputDir:      "target/site",
//	})
package pipeline

import (
	"time"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultArtifactDir is where built artifacts are found, relative to the
// module directory.
const DefaultArtifactDir = "target"

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one release run.
type Options struct {
	// ReleaseVersion is the host version released for. When empty, the
	// release line of the first module is used.
	ReleaseVersion string

	// OutputDir is the update site root. Artifacts go to OutputDir/<minor>.
	// When empty, nothing is published.
	OutputDir string

	// ArtifactDir locates built artifacts relative to each module directory.
	ArtifactDir string

	// MetadataURL is the published site root, used to download the
	// artifacts of unchanged plugins.
	MetadataURL string

	// Paths names distributable files.
	Paths release.PathResolver

	// Categories lists accepted display categories; nil means the defaults.
	Categories []string

	// SkipUnchanged downloads the published artifacts of unchanged
	// plugins instead of copying local builds.
	SkipUnchanged bool

	// Strict fails the run when a module belongs to more than one suite.
	Strict bool

	// DryRun computes everything but does not save the registry. Snapshot
	// release versions always run dry.
	DryRun bool

	// Now returns the release date; defaults to time.Now.
	Now func() time.Time
}

// setDefaults fills empty fields and resolves the release version.
func (o *Options) setDefaults(mods []module.Module) error {
	if o.ArtifactDir == "" {
		o.ArtifactDir = DefaultArtifactDir
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.ReleaseVersion == "" {
		for _, m := range mods {
			if m.ReleaseLine != "" {
				o.ReleaseVersion = m.ReleaseLine
				break
			}
		}
	}
	if o.ReleaseVersion == "" {
		return errors.New(errors.ErrCodeInvalidVersion, "no release version given and no module declares a release line")
	}
	if _, err := release.MinorVersion(o.ReleaseVersion); err != nil {
		return err
	}
	if release.IsSnapshot(o.ReleaseVersion) {
		o.DryRun = true
	}
	return nil
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a release run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// ReleaseVersion is the full release version; it keys version entries.
	ReleaseVersion string

	// DownloadDir is the minor release line, the artifact directory name.
	DownloadDir string

	// Forest is the suite classification of the kept modules.
	Forest suite.Result

	// Ignored lists modules of another release line.
	Ignored []module.Module

	// Plan is the merge outcome.
	Plan *release.Plan

	// Files lists published files relative to OutputDir.
	Files []string

	// DryRun reports whether the registry save was skipped.
	DryRun bool

	// Stats contains timing information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MergeTime   time.Duration
	PublishTime time.Duration
	SaveTime    time.Duration
}
