// Package descriptor reads and writes module set files.
//
// A module set file lists the modules to classify without a Maven reactor.
// The format is available as JSON and YAML:
//
//	{
//	  "modules": [
//	    {
//	      "namespace": "org.example",
//	      "name": "app",
//	      "version": "1.0.0",
//	      "release_line": "0.9.3",
//	      "dependencies": [
//	        {"namespace": "org.example", "name": "core", "version": "1.0.0"}
//	      ]
//	    },
//	    {"namespace": "org.example", "name": "core", "version": "1.0.0"}
//	  ]
//	}
//
// The format is chosen by file extension (.json, .yaml, .yml) when reading
// and writing files.
package descriptor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
)

// Format is a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", errors.New(errors.ErrCodeUnsupported, "unknown module file format: %s", path)
	}
}

type file struct {
	Modules []entry `json:"modules" yaml:"modules"`
}

type entry struct {
	Namespace    string            `json:"namespace" yaml:"namespace"`
	Name         string            `json:"name" yaml:"name"`
	Version      string            `json:"version" yaml:"version"`
	ReleaseLine  string            `json:"release_line,omitempty" yaml:"release_line,omitempty"`
	DisplayName  string            `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Dir          string            `json:"dir,omitempty" yaml:"dir,omitempty"`
	Packaging    string            `json:"packaging,omitempty" yaml:"packaging,omitempty"`
	Dependencies []module.Identity `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Read decodes a module set from r. Every identity must be complete and
// safe to use in file names.
func Read(r io.Reader, format Format) ([]module.Module, error) {
	var f file
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(&f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode module file")
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode module file")
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}

	mods := make([]module.Module, 0, len(f.Modules))
	for i, e := range f.Modules {
		m := module.Module{
			Identity:     module.Identity{Namespace: e.Namespace, Name: e.Name, Version: e.Version},
			Dependencies: e.Dependencies,
			ReleaseLine:  e.ReleaseLine,
			DisplayName:  e.DisplayName,
			Dir:          e.Dir,
			Packaging:    e.Packaging,
		}
		if err := m.Identity.Validate(); err != nil {
			return nil, fmt.Errorf("module #%d: %w", i, err)
		}
		for _, d := range m.Dependencies {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("module %s: dependency: %w", m.Identity, err)
			}
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// ReadFile reads a module set file. Relative module directories are
// resolved against the directory of path.
func ReadFile(path string) ([]module.Module, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "module file %s", path)
		}
		return nil, err
	}
	defer f.Close()

	mods, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i := range mods {
		if mods[i].Dir != "" && !filepath.IsAbs(mods[i].Dir) {
			mods[i].Dir = filepath.Join(base, mods[i].Dir)
		}
	}
	return mods, nil
}

// Write encodes mods to w.
func Write(w io.Writer, mods []module.Module, format Format) error {
	f := file{Modules: make([]entry, len(mods))}
	for i, m := range mods {
		f.Modules[i] = entry{
			Namespace:    m.Identity.Namespace,
			Name:         m.Identity.Name,
			Version:      m.Identity.Version,
			ReleaseLine:  m.ReleaseLine,
			DisplayName:  m.DisplayName,
			Dir:          m.Dir,
			Packaging:    m.Packaging,
			Dependencies: m.Dependencies,
		}
	}

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
}

// WriteFile writes mods to path in the format implied by its extension.
func WriteFile(path string, mods []module.Module) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, mods, format); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
