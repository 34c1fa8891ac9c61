package pom

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
)

// NBM plugin keys, in lookup order.
var NbmPluginKeys = []string{
	"org.codehaus.mojo:nbm-maven-plugin",
	"org.apache.netbeans.utilities:nbm-maven-plugin",
}

// PluginConfig returns the configuration of the build plugin with the given
// "groupId:artifactId" key. Keys compare case-insensitively.
func (p *Project) PluginConfig(key string) (map[string]string, bool) {
	for _, pl := range p.Plugins {
		if strings.EqualFold(pl.Key(), key) {
			return pl.Configuration, true
		}
	}
	return nil, false
}

// NbmConfig returns the configuration of the NBM packaging plugin.
func (p *Project) NbmConfig() (map[string]string, bool) {
	for _, key := range NbmPluginKeys {
		if cfg, ok := p.PluginConfig(key); ok {
			return cfg, true
		}
	}
	return nil, false
}

// Discover reads the POM in dir (or the POM file dir names) and every
// project reachable through <modules>, depth first in declaration order.
// The aggregator comes before its modules.
func Discover(dir string) ([]*Project, error) {
	l := newLoader()
	var out []*Project
	seen := make(map[string]bool)
	if err := l.discover(pomPath(dir), seen, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *loader) discover(path string, seen map[string]bool, out *[]*Project) error {
	p, err := l.load(path)
	if err != nil {
		return err
	}
	if seen[p.Path] {
		return nil
	}
	seen[p.Path] = true
	*out = append(*out, p)

	for _, m := range p.Modules {
		child := pomPath(filepath.Join(p.Dir, filepath.FromSlash(m)))
		if err := l.discover(child, seen, out); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPOM, err, "module %q of %s", m, p.ArtifactID)
		}
	}
	return nil
}

func pomPath(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, FileName)
	}
	return path
}

// Modules converts projects with the given packaging into modules. An
// empty packaging keeps every project.
func Modules(projects []*Project, packaging, releaseProperty string) []module.Module {
	var mods []module.Module
	for _, p := range projects {
		if packaging != "" && p.Packaging != packaging {
			continue
		}
		mods = append(mods, p.Module(releaseProperty))
	}
	return mods
}
