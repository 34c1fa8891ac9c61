// Package metadata describes plugins from their module directories.
//
// [FileProvider] implements the release.Provider interface. It combines
// the module manifest (branding and category), the NBM plugin configuration
// of the module POM (license, author, homepage, source code), README.md and
// the screenshot folder.
package metadata

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/manifest"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/pom"
	"github.com/matzehuels/pluginrelease/pkg/registry"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/screenshot"
)

// DefaultManifest is the manifest location relative to a module directory.
const DefaultManifest = "src/main/nbm/manifest.mf"

// ReadmeFile is attached to the plugin record when present.
const ReadmeFile = "README.md"

// NBM plugin configuration keys.
const (
	keyLicense     = "licenseName"
	keyAuthor      = "author"
	keyAuthorEmail = "authorEmail"
	keyAuthorURL   = "authorUrl"
	keyHomepage    = "homePageUrl"
	keySourceCode  = "sourceCodeUrl"
)

// FileProvider reads plugin metadata from module directories.
type FileProvider struct {
	// Manifest is the manifest path relative to the module directory.
	Manifest string
	// ImagesDir is the screenshot folder relative to the module directory.
	ImagesDir string
	// OutputDir is the site root; screenshots go to OutputDir/imgs/<id>.
	OutputDir string
	// ThumbnailSize is the thumbnail edge length in pixels.
	ThumbnailSize int
	// DryRun skips writing screenshots.
	DryRun bool
	Logger *log.Logger
}

var _ release.Provider = (*FileProvider)(nil)

// Describe implements release.Provider.
func (p *FileProvider) Describe(ctx context.Context, root module.Module, members []module.Module) (release.Description, error) {
	if err := ctx.Err(); err != nil {
		return release.Description{}, err
	}
	logger := p.logger().With("plugin", root.Identity.Name)

	m, err := p.readManifest(root)
	if err != nil {
		return release.Description{}, err
	}
	main := m.Main()
	d := release.Description{
		Name:             main.Value(manifest.ModuleName),
		ShortDescription: main.Value(manifest.ShortDescription),
		LongDescription:  main.Value(manifest.LongDescription),
		Category:         main.Value(manifest.DisplayCategory),
	}

	proj, err := p.readPOM(root)
	if err != nil {
		return release.Description{}, err
	}
	if proj != nil {
		cfg, _ := proj.NbmConfig()
		d.License = cfg[keyLicense]
		d.Authors = authors(cfg)
		d.Homepage = cfg[keyHomepage]
		d.SourceCode = cfg[keySourceCode]
		if d.SourceCode == "" {
			d.SourceCode = proj.SCMURL
		}
	}
	if d.SourceCode == "" {
		if u, ok := GitRemoteURL(root.Dir); ok {
			logger.Debug("source code url from git config", "url", u)
			d.SourceCode = u
		}
	}

	readme, err := os.ReadFile(filepath.Join(root.Dir, ReadmeFile))
	switch {
	case err == nil:
		d.Readme = string(readme)
		logger.Info("attached README.md", "chars", len(d.Readme))
	case !os.IsNotExist(err):
		logger.Warn("cannot read README.md", "err", err)
	}

	id := release.PluginID(root)
	images, err := screenshot.Collect(
		filepath.Join(root.Dir, p.imagesDir()),
		filepath.Join(p.OutputDir, "imgs", id),
		"imgs/"+id+"/",
		screenshot.Options{ThumbnailSize: p.ThumbnailSize, DryRun: p.DryRun, Logger: logger},
	)
	if err != nil {
		return release.Description{}, err
	}
	d.Images = images
	return d, nil
}

// CheckSuiteMember verifies that an absorbed module is hidden from the
// plugin manager client.
func (p *FileProvider) CheckSuiteMember(m module.Module) error {
	mf, err := p.readManifest(m)
	if err != nil {
		return err
	}
	if mf.Main().Value(manifest.ShowInClient) != "false" {
		return errors.New(errors.ErrCodeInvalidManifest,
			"the manifest of %s should contain a %q entry set to \"false\"", m.Label(), manifest.ShowInClient)
	}
	return nil
}

// CheckRoot verifies that a suite root carries a license, an author and
// valid manifest branding.
func (p *FileProvider) CheckRoot(m module.Module, categories []string) error {
	proj, err := p.readPOM(m)
	if err != nil {
		return err
	}
	var cfg map[string]string
	if proj != nil {
		cfg, _ = proj.NbmConfig()
	}
	if cfg[keyLicense] == "" {
		return errors.New(errors.ErrCodeMissingMetadata,
			"the %q configuration should be set for %s in the nbm-maven-plugin configuration", keyLicense, m.Label())
	}
	if cfg[keyAuthor] == "" {
		return errors.New(errors.ErrCodeMissingMetadata,
			"the %q configuration should be set for %s in the nbm-maven-plugin configuration", keyAuthor, m.Label())
	}

	mf, err := p.readManifest(m)
	if err != nil {
		return err
	}
	main := mf.Main()
	d := release.Description{
		Name:             main.Value(manifest.ModuleName),
		ShortDescription: main.Value(manifest.ShortDescription),
		LongDescription:  main.Value(manifest.LongDescription),
		Category:         main.Value(manifest.DisplayCategory),
	}
	if err := d.Check(categories); err != nil {
		return errors.Wrap(errors.ErrCodeMissingMetadata, err, "manifest of %s", m.Label())
	}
	return nil
}

func (p *FileProvider) readManifest(m module.Module) (*manifest.Manifest, error) {
	if m.Dir == "" {
		return nil, errors.New(errors.ErrCodeMissingMetadata, "module %s has no directory", m.Identity)
	}
	path := filepath.Join(m.Dir, p.manifestPath())
	mf, err := manifest.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMissingMetadata, err, "manifest of %s", m.Label())
	}
	return mf, nil
}

// readPOM returns nil when the module has no POM.
func (p *FileProvider) readPOM(m module.Module) (*pom.Project, error) {
	if m.Dir == "" {
		return nil, nil
	}
	path := filepath.Join(m.Dir, pom.FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return pom.Read(path)
}

func authors(cfg map[string]string) []registry.Author {
	name := strings.TrimSpace(cfg[keyAuthor])
	if name == "" {
		return nil
	}
	return []registry.Author{{
		Name:  name,
		Email: registry.String(cfg[keyAuthorEmail]),
		Link:  registry.String(cfg[keyAuthorURL]),
	}}
}

func (p *FileProvider) manifestPath() string {
	if p.Manifest == "" {
		return DefaultManifest
	}
	return p.Manifest
}

func (p *FileProvider) imagesDir() string {
	if p.ImagesDir == "" {
		return screenshot.DefaultSourceDir
	}
	return p.ImagesDir
}

func (p *FileProvider) logger() *log.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return log.NewWithOptions(io.Discard, log.Options{})
}
