package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pluginrelease/pkg/config"
	"github.com/matzehuels/pluginrelease/pkg/metadata"
	"github.com/matzehuels/pluginrelease/pkg/pipeline"
)

func (c *CLI) validateCommand() *cobra.Command {
	var in inputOpts
	var version string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check plugin metadata before a release",
		Long: `Validate classifies the plugin modules and checks that every suite shares one
release line, that absorbed modules are hidden from the plugin manager and that
every suite root carries a license, an author and complete manifest branding.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), in, version)
		},
	}

	addInputFlags(cmd, &in)
	cmd.Flags().StringVar(&version, "version", "", "release version (default: release line of the modules)")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, in inputOpts, version string) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	mods, err := c.loadModules(in, cfg)
	if err != nil {
		return err
	}
	if version == "" {
		version = cfg.ReleaseVersion
	}

	runner := &pipeline.Runner{Provider: c.metadataProvider(cfg, true), Logger: c.Logger}
	report, err := runner.Validate(ctx, mods, pipeline.Options{
		ReleaseVersion: version,
		Categories:     cfg.Categories,
		Strict:         cfg.Strict,
	})
	if err != nil {
		printError("Validation failed")
		return err
	}

	for _, w := range report.Warnings {
		printWarning("%s", w)
	}
	for _, e := range report.Forest.Entries {
		if e.IsBundle() {
			printInfo("Suite %s", StyleHighlight.Render(e.Root.Label()))
			for _, m := range e.Absorbed() {
				printDetail("%s is a dependency", m.Label())
			}
		} else {
			printInfo("Single module %s", StyleHighlight.Render(e.Root.Label()))
		}
	}
	printSuccess("%d suites ready for release", len(report.Forest.Entries))
	return nil
}

// metadataProvider builds the file-based metadata provider from cfg.
func (c *CLI) metadataProvider(cfg *config.Config, dryRun bool) *metadata.FileProvider {
	return &metadata.FileProvider{
		Manifest:      cfg.Manifest,
		ImagesDir:     cfg.Images.SourceDir,
		OutputDir:     cfg.OutputDir,
		ThumbnailSize: cfg.Images.ThumbnailSize,
		DryRun:        dryRun,
		Logger:        c.Logger,
	}
}
