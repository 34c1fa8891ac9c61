package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pluginrelease/pkg/config"
	"github.com/matzehuels/pluginrelease/pkg/descriptor"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/pom"
)

// inputOpts selects where modules come from.
type inputOpts struct {
	reactor string // Maven reactor directory
	modules string // module descriptor file (JSON or YAML)
}

func addInputFlags(cmd *cobra.Command, in *inputOpts) {
	cmd.Flags().StringVar(&in.reactor, "reactor", ".", "Maven reactor directory to discover modules from")
	cmd.Flags().StringVar(&in.modules, "modules", "", "module descriptor file (.json, .yaml) instead of a reactor")
	cmd.MarkFlagsMutuallyExclusive("reactor", "modules")
}

// loadModules reads the module set selected by in.
func (c *CLI) loadModules(in inputOpts, cfg *config.Config) ([]module.Module, error) {
	if in.modules != "" {
		mods, err := descriptor.ReadFile(in.modules)
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("read module descriptor", "file", in.modules, "modules", len(mods))
		return mods, nil
	}

	projects, err := pom.Discover(in.reactor)
	if err != nil {
		return nil, fmt.Errorf("discover reactor: %w", err)
	}
	mods := pom.Modules(projects, nbmPackaging, cfg.ReleaseProperty)
	for _, m := range mods {
		c.Logger.Debug("found plugin module", "module", m.Label(), "id", m.Identity, "line", m.ReleaseLine)
	}
	c.Logger.Debug("discovered reactor", "projects", len(projects), "modules", len(mods))
	return mods, nil
}
