// Package pom reads Maven project descriptors and turns them into modules.
//
// Only the parts of the POM model the release pipeline needs are decoded:
// coordinates with parent inheritance, packaging, properties, dependencies,
// reactor modules, the SCM url and the configuration of build plugins.
// Property references (${name}) are resolved from the project properties,
// inherited parent properties and the built-in project.* values.
package pom

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
)

// FileName is the conventional descriptor file name.
const FileName = "pom.xml"

// Dependency is a declared dependency with resolved coordinates.
type Dependency struct {
	GroupID    string
	ArtifactID string
	Version    string
	Scope      string
	Optional   bool
}

// Plugin is a build plugin with its flat configuration values.
type Plugin struct {
	GroupID       string
	ArtifactID    string
	Version       string
	Configuration map[string]string
}

// Key returns "groupId:artifactId".
func (p Plugin) Key() string { return p.GroupID + ":" + p.ArtifactID }

// Project is a decoded and resolved POM.
type Project struct {
	GroupID      string
	ArtifactID   string
	Version      string
	Packaging    string
	Name         string
	Description  string
	URL          string
	Properties   map[string]string
	Dependencies []Dependency
	Modules      []string
	SCMURL       string
	Plugins      []Plugin

	// Path is the descriptor file; Dir its directory.
	Path string
	Dir  string
}

// Identity returns the project coordinates.
func (p *Project) Identity() module.Identity {
	return module.Identity{Namespace: p.GroupID, Name: p.ArtifactID, Version: p.Version}
}

// Property returns a resolved project property.
func (p *Project) Property(name string) (string, bool) {
	v, ok := p.Properties[name]
	return v, ok
}

// Module converts the project into a module. releaseProperty names the
// property holding the host platform version (e.g. "gephi.version").
// Test-scoped dependencies and dependencies with unresolved coordinates are
// left out.
func (p *Project) Module(releaseProperty string) module.Module {
	m := module.Module{
		Identity:    p.Identity(),
		DisplayName: p.Name,
		Dir:         p.Dir,
		Packaging:   p.Packaging,
	}
	if releaseProperty != "" {
		m.ReleaseLine = p.Properties[releaseProperty]
	}

	seen := make(map[module.Identity]bool)
	for _, d := range p.Dependencies {
		if d.Scope == "test" {
			continue
		}
		if hasReference(d.GroupID) || hasReference(d.ArtifactID) || hasReference(d.Version) {
			continue
		}
		id := module.Identity{Namespace: d.GroupID, Name: d.ArtifactID, Version: d.Version}
		if !seen[id] {
			seen[id] = true
			m.Dependencies = append(m.Dependencies, id)
		}
	}
	return m
}

// Read parses the POM at path. A parent POM found through
// <relativePath> (default ../pom.xml) contributes coordinates, properties
// and build plugins.
func Read(path string) (*Project, error) {
	return newLoader().load(path)
}

// Parse decodes a POM from data without parent lookup. dir is recorded as
// the project directory.
func Parse(data []byte, dir string) (*Project, error) {
	raw, err := decode(data, "pom")
	if err != nil {
		return nil, err
	}
	return build(raw, nil, dir), nil
}

func decode(data []byte, name string) (*pomProject, error) {
	var raw pomProject
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPOM, err, "decode %s", name)
	}
	return &raw, nil
}

// =============================================================================
// Loading
// =============================================================================

const maxParentDepth = 16

type loader struct {
	cache map[string]*Project
	depth int
}

func newLoader() *loader {
	return &loader{cache: make(map[string]*Project)}
}

func (l *loader) load(path string) (*Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if p, ok := l.cache[abs]; ok {
		return p, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "pom %s", path)
		}
		return nil, err
	}
	raw, err := decode(data, path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	var parent *Project
	if raw.Parent != nil && l.depth < maxParentDepth {
		parent = l.parent(raw.Parent, dir)
	}

	p := build(raw, parent, dir)
	p.Path = abs
	l.cache[abs] = p
	return p, nil
}

// parent loads the parent POM when it exists on disk and carries the
// declared coordinates. Parents resolved from a repository are not
// supported; the declared coordinates still apply.
func (l *loader) parent(ref *pomParent, dir string) *Project {
	rel := ref.RelativePath
	if rel == "" {
		rel = "../" + FileName
	}
	path := filepath.Join(dir, rel)
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, FileName)
	}

	l.depth++
	defer func() { l.depth-- }()
	p, err := l.load(path)
	if err != nil || p.GroupID != ref.GroupID || p.ArtifactID != ref.ArtifactID {
		return nil
	}
	return p
}

// =============================================================================
// Resolution
// =============================================================================

func build(raw *pomProject, parent *Project, dir string) *Project {
	p := &Project{
		GroupID:     trim(raw.GroupID),
		ArtifactID:  trim(raw.ArtifactID),
		Version:     trim(raw.Version),
		Packaging:   trim(raw.Packaging),
		Name:        trim(raw.Name),
		Description: trim(raw.Description),
		URL:         trim(raw.URL),
		Properties:  make(map[string]string),
		Dir:         dir,
	}

	if raw.Parent != nil {
		if p.GroupID == "" {
			p.GroupID = trim(raw.Parent.GroupID)
		}
		if p.Version == "" {
			p.Version = trim(raw.Parent.Version)
		}
	}
	if p.Packaging == "" {
		p.Packaging = "jar"
	}

	if parent != nil {
		for k, v := range parent.Properties {
			p.Properties[k] = v
		}
	}
	for _, e := range raw.Properties.Entries {
		p.Properties[e.XMLName.Local] = trim(e.Value)
	}

	r := resolver{project: p, parent: raw.Parent}
	p.GroupID = r.resolve(p.GroupID)
	p.Version = r.resolve(p.Version)
	for k, v := range p.Properties {
		p.Properties[k] = r.resolve(v)
	}
	p.Name = r.resolve(p.Name)
	p.SCMURL = r.resolve(trim(raw.SCM.URL))

	for _, d := range raw.Dependencies {
		p.Dependencies = append(p.Dependencies, Dependency{
			GroupID:    r.resolve(trim(d.GroupID)),
			ArtifactID: r.resolve(trim(d.ArtifactID)),
			Version:    r.resolve(trim(d.Version)),
			Scope:      trim(d.Scope),
			Optional:   trim(d.Optional) == "true",
		})
	}
	for _, m := range raw.Modules {
		if m = trim(m); m != "" {
			p.Modules = append(p.Modules, m)
		}
	}

	seen := make(map[string]bool)
	for _, rp := range raw.Plugins {
		pl := Plugin{
			GroupID:       trim(rp.GroupID),
			ArtifactID:    trim(rp.ArtifactID),
			Version:       r.resolve(trim(rp.Version)),
			Configuration: make(map[string]string),
		}
		if pl.GroupID == "" {
			pl.GroupID = "org.apache.maven.plugins"
		}
		for _, e := range rp.Configuration.Entries {
			pl.Configuration[e.XMLName.Local] = r.resolve(trim(e.Value))
		}
		seen[strings.ToLower(pl.Key())] = true
		p.Plugins = append(p.Plugins, pl)
	}
	if parent != nil {
		for _, pl := range parent.Plugins {
			if !seen[strings.ToLower(pl.Key())] {
				p.Plugins = append(p.Plugins, pl)
			}
		}
	}
	return p
}

var referenceRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

type resolver struct {
	project *Project
	parent  *pomParent
}

// resolve substitutes property references, leaving unknown ones in place.
// Substitution is repeated so that properties may refer to each other.
func (r resolver) resolve(s string) string {
	for range 8 {
		if !hasReference(s) {
			return s
		}
		next := referenceRegex.ReplaceAllStringFunc(s, func(ref string) string {
			if v, ok := r.lookup(ref[2 : len(ref)-1]); ok {
				return v
			}
			return ref
		})
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func (r resolver) lookup(name string) (string, bool) {
	switch name {
	case "project.version", "pom.version", "version":
		return r.project.Version, true
	case "project.groupId", "pom.groupId":
		return r.project.GroupID, true
	case "project.artifactId", "pom.artifactId":
		return r.project.ArtifactID, true
	case "project.name":
		return r.project.Name, true
	case "project.basedir", "basedir":
		return r.project.Dir, true
	case "project.parent.version":
		if r.parent != nil {
			return trim(r.parent.Version), true
		}
	case "project.parent.groupId":
		if r.parent != nil {
			return trim(r.parent.GroupID), true
		}
	}
	v, ok := r.project.Properties[name]
	return v, ok
}

func hasReference(s string) bool {
	return strings.Contains(s, "${")
}

func trim(s string) string { return strings.TrimSpace(s) }
