package release

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/registry"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

// DateFormat is the layout of last_update values in the registry.
const DateFormat = "January 2, 2006"

// Coordinator merges classified suites into a registry for one release line.
type Coordinator struct {
	// Registry is the registry merged into by MergeOne.
	Registry *registry.Registry
	// ReleaseLine is the key of the version entries written by this run.
	ReleaseLine string
	// DownloadDir prefixes the url of every version entry.
	DownloadDir string
	// Provider describes suites that are not skipped.
	Provider Provider
	// Paths names the distributable files.
	Paths PathResolver
	// Categories lists accepted categories; nil means DefaultCategories.
	Categories []string
	// Now returns the release date; defaults to time.Now.
	Now func() time.Time
	Logger *log.Logger
}

// Outcome is the result of merging one suite.
type Outcome struct {
	Entry suite.Entry
	// Plugin is the record after the merge (unchanged when skipped).
	Plugin *registry.Plugin
	// Skipped reports that the registry already held the root's version.
	Skipped bool
	// Filename is the distributable file name of the suite.
	Filename string
}

// ID returns the plugin id of the outcome.
func (o Outcome) ID() string { return PluginID(o.Entry.Root) }

// PluginID returns the registry id of a suite rooted at root.
func PluginID(root module.Module) string { return root.Identity.Name }

// MergeOne merges a single suite into c.Registry.
//
// When the registry records the root version for the release line, the
// suite is skipped and the record is returned as is. Otherwise the suite is
// described, checked and upserted with a fresh version entry. On error the
// registry is not modified.
func (c *Coordinator) MergeOne(ctx context.Context, entry suite.Entry) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if c.Registry == nil {
		return Outcome{}, errors.New(errors.ErrCodeInternal, "coordinator has no registry")
	}
	if c.ReleaseLine == "" {
		return Outcome{}, errors.New(errors.ErrCodeInvalidVersion, "release line is not set")
	}

	root := entry.Root
	id := PluginID(root)
	out := Outcome{Entry: entry, Filename: c.Paths.ResolveEntry(entry)}
	logger := c.logger().With("plugin", id, "version", root.Identity.Version)

	if p, ok := c.Registry.Find(id); ok {
		if v, ok := p.Version(c.ReleaseLine); ok && v.PluginVersion == root.Identity.Version {
			logger.Debug("version already published, skipping", "members", len(entry.Members))
			out.Plugin = p
			out.Skipped = true
			return out, nil
		}
	}

	if c.Provider == nil {
		return Outcome{}, errors.New(errors.ErrCodeInternal, "coordinator has no metadata provider")
	}
	desc, err := c.Provider.Describe(ctx, root, entry.Members)
	if err != nil {
		return Outcome{}, fmt.Errorf("describe %s: %w", id, err)
	}
	if err := desc.Check(c.Categories); err != nil {
		return Outcome{}, fmt.Errorf("plugin %s: %w", id, err)
	}

	date := c.now().Format(DateFormat)
	version := registry.Version{
		LastUpdate:    date,
		URL:           c.url(out.Filename),
		PluginVersion: root.Identity.Version,
	}

	p, err := c.Registry.Upsert(id, func(p *registry.Plugin, found bool) error {
		desc.apply(p)
		p.LastUpdate = registry.String(date)
		p.SetVersion(c.ReleaseLine, version)
		if !found {
			logger.Debug("adding new plugin")
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	logger.Info("merged plugin metadata", "file", out.Filename, "line", c.ReleaseLine)
	out.Plugin = p
	return out, nil
}

// MergeAll merges every entry of forest in order.
//
// The merge runs against a copy of c.Registry. The first failure aborts the
// batch and leaves c.Registry untouched; on success the merged copy is
// returned in Plan.Registry and c.Registry is not replaced.
func (c *Coordinator) MergeAll(ctx context.Context, forest suite.Result) (*Plan, error) {
	if c.Registry == nil {
		return nil, errors.New(errors.ErrCodeInternal, "coordinator has no registry")
	}

	work := *c
	work.Registry = c.Registry.Clone()

	plan := &Plan{Registry: work.Registry}
	for _, entry := range forest.Entries {
		out, err := work.MergeOne(ctx, entry)
		if err != nil {
			return nil, err
		}
		plan.Outcomes = append(plan.Outcomes, out)
	}
	return plan, nil
}

func (c *Coordinator) url(filename string) string {
	if c.DownloadDir == "" {
		return filename
	}
	return c.DownloadDir + "/" + filename
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}
