// Package config loads release settings from pluginrelease.toml.
//
// Values missing from the file keep their [Default]. Unknown keys are
// rejected so that typos do not silently fall back to defaults. Command-line
// flags are applied on top by the caller.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/release"
	"github.com/matzehuels/pluginrelease/pkg/screenshot"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "pluginrelease.toml"

// Config holds every release setting.
type Config struct {
	ReleaseVersion  string   `toml:"release_version"`
	ReleaseProperty string   `toml:"release_property"`
	OutputDir       string   `toml:"output_dir"`
	MetadataURL     string   `toml:"metadata_url"`
	Snapshot        string   `toml:"snapshot"`
	RegistryFile    string   `toml:"registry_file"`
	Manifest        string   `toml:"manifest"`
	SingleExt       string   `toml:"single_ext"`
	BundleExt       string   `toml:"bundle_ext"`
	SkipUnchanged   bool     `toml:"skip_unchanged"`
	Strict          bool     `toml:"strict"`
	Categories      []string `toml:"categories"`
	Images          Images   `toml:"images"`
}

// Images configures screenshot handling.
type Images struct {
	SourceDir     string `toml:"source_dir"`
	ThumbnailSize int    `toml:"thumbnail_size"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ReleaseProperty: "gephi.version",
		OutputDir:       filepath.Join("target", "site"),
		RegistryFile:    "plugins.json",
		Manifest:        "src/main/nbm/manifest.mf",
		SingleExt:       release.DefaultSingleExt,
		BundleExt:       release.DefaultBundleExt,
		Categories:      append([]string(nil), release.DefaultCategories...),
		Images: Images{
			SourceDir:     screenshot.DefaultSourceDir,
			ThumbnailSize: screenshot.DefaultThumbnailSize,
		},
	}
}

// Load reads path over [Default]. An empty path returns the defaults, or
// the contents of FileName in the working directory when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(FileName); err != nil {
			return cfg, nil
		}
		path = FileName
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	if c.ReleaseVersion != "" {
		if _, err := release.MinorVersion(c.ReleaseVersion); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "release_version")
		}
	}
	if strings.TrimSpace(c.ReleaseProperty) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "release_property cannot be empty")
	}
	if c.OutputDir == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "output_dir cannot be empty")
	}
	if c.MetadataURL != "" {
		if err := errors.ValidateURL(c.MetadataURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "metadata_url")
		}
	}
	if c.RegistryFile == "" || strings.ContainsAny(c.RegistryFile, `/\`) {
		return errors.New(errors.ErrCodeInvalidConfig, "registry_file must be a plain file name, got %q", c.RegistryFile)
	}
	if c.SingleExt == "" || c.BundleExt == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "single_ext and bundle_ext cannot be empty")
	}
	if c.SingleExt == c.BundleExt {
		return errors.New(errors.ErrCodeInvalidConfig, "single_ext and bundle_ext must differ, both are %q", c.SingleExt)
	}
	if len(c.Categories) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "categories cannot be empty")
	}
	for _, cat := range c.Categories {
		if strings.TrimSpace(cat) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "categories cannot contain blank entries")
		}
	}
	if c.Images.ThumbnailSize <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "images.thumbnail_size must be positive, got %d", c.Images.ThumbnailSize)
	}
	return nil
}

// PathResolver returns the artifact naming rules of c.
func (c *Config) PathResolver() release.PathResolver {
	return release.PathResolver{SingleExt: c.SingleExt, BundleExt: c.BundleExt}
}

// RegistryURL returns the published registry location under MetadataURL,
// or "" when no metadata URL is configured.
func (c *Config) RegistryURL() string {
	if c.MetadataURL == "" {
		return ""
	}
	return strings.TrimSuffix(c.MetadataURL, "/") + "/" + c.RegistryFile
}
