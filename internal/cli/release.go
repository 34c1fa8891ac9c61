package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/pipeline"
	"github.com/matzehuels/pluginrelease/pkg/release"
)

// releaseOpts holds the command-line flags of the release command. Flags
// left unset keep the configuration file values.
type releaseOpts struct {
	input         inputOpts
	version       string
	output        string
	snapshot      string
	metadataURL   string
	skipUnchanged bool
	dryRun        bool
	strict        bool
}

func (c *CLI) releaseCommand() *cobra.Command {
	var opts releaseOpts

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Merge plugin metadata and build the update site",
		Long: `Release classifies the plugin modules, merges their metadata into the plugin
registry and writes the update site: per-module artifacts, suite archives,
updates.xml and updates.xml.gz under <output>/<minor version>.

Plugins whose version is already published for the release are left
unchanged. Snapshot release versions always run dry: nothing is saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("output") {
				cfg.OutputDir = opts.output
			}
			if flags.Changed("metadata-url") {
				cfg.MetadataURL = opts.metadataURL
			}
			if flags.Changed("snapshot") {
				cfg.Snapshot = opts.snapshot
			}
			if flags.Changed("skip-unchanged") {
				cfg.SkipUnchanged = opts.skipUnchanged
			}
			if flags.Changed("strict") {
				cfg.Strict = opts.strict
			}
			if opts.version != "" {
				cfg.ReleaseVersion = opts.version
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runRelease(cmd.Context(), opts)
		},
	}

	addInputFlags(cmd, &opts.input)
	cmd.Flags().StringVar(&opts.version, "version", "", "release version (default: release line of the modules)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "update site directory")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "registry store URI (path, file://, http(s)://, redis://, mongodb://, null:)")
	cmd.Flags().StringVar(&opts.metadataURL, "metadata-url", "", "published site root holding the previous registry")
	cmd.Flags().BoolVar(&opts.skipUnchanged, "skip-unchanged", false, "download unchanged plugins instead of repackaging them")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "do not save the merged registry")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a module belongs to several suites")

	return cmd
}

func (c *CLI) runRelease(ctx context.Context, opts releaseOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	mods, err := c.loadModules(opts.input, cfg)
	if err != nil {
		return err
	}

	store, err := c.openRegistryStore(ctx, cfg.Snapshot, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	dryRun := opts.dryRun || release.IsSnapshot(cfg.ReleaseVersion)
	runner := &pipeline.Runner{
		Source:     store,
		Sink:       store,
		Provider:   c.metadataProvider(cfg, dryRun),
		Downloader: c.httpClient(),
		Logger:     c.Logger,
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, mods, pipeline.Options{
		ReleaseVersion: cfg.ReleaseVersion,
		OutputDir:      cfg.OutputDir,
		MetadataURL:    cfg.MetadataURL,
		Paths:          cfg.PathResolver(),
		Categories:     cfg.Categories,
		SkipUnchanged:  cfg.SkipUnchanged,
		Strict:         cfg.Strict,
		DryRun:         dryRun,
	})
	if err != nil {
		if errors.IsFatal(err) {
			printError("Release aborted, nothing was published")
		} else {
			printError("Release failed")
		}
		return err
	}
	prog.done("release finished", "suites", len(result.Forest.Entries), "dry_run", result.DryRun)
	logStats(c.Logger, result.RunID, result.Stats)

	printNewline()
	printKeyValue("Release", result.ReleaseVersion)
	printKeyValue("Run", result.RunID)
	for _, o := range result.Plan.Outcomes {
		printInfo("%s %s %s", StyleHighlight.Render(o.ID()), o.Entry.Root.Identity.Version, badge(o.Skipped))
	}
	for _, f := range result.Files {
		printFile(f)
	}
	printSummary(
		summaryCount{len(result.Plan.Updated()), "updated"},
		summaryCount{len(result.Plan.SkippedRoots()), "unchanged"},
		summaryCount{len(result.Ignored), "ignored"},
		summaryCount{len(result.Files), "files"},
	)
	if result.DryRun {
		printWarning("Dry run: the registry was not saved")
		return nil
	}
	printSuccess("Registry saved with %d plugins", result.Plan.Registry.Len())
	printNextStep("Preview the site", appName+" serve --dir "+cfg.OutputDir)
	return nil
}
