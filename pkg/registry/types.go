package registry

import (
	"maps"
	"slices"
)

// Registry is the persisted catalog of published plugins. Plugins keep the
// order in which they were first added.
type Registry struct {
	Plugins []*Plugin `json:"plugins"`
}

// Plugin is the record of one distributable plugin. Optional fields are
// pointers or nil slices so that an absent value serializes as null.
type Plugin struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription string             `json:"shortDescription"`
	LongDescription  string             `json:"longDescription"`
	Category         string             `json:"category"`
	License          *string            `json:"license"`
	Authors          []Author           `json:"authors"`
	LastUpdate       *string            `json:"last_update"`
	Readme           *string            `json:"readme"`
	Images           []Image            `json:"images"`
	Homepage         *string            `json:"homepage"`
	SourceCode       *string            `json:"sourcecode"`
	Versions         map[string]Version `json:"versions"`
}

// Author identifies a plugin author.
type Author struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
	Link  *string `json:"link"`
}

// Image references a screenshot and its thumbnail, relative to the site root.
type Image struct {
	Image     string  `json:"image"`
	Thumbnail *string `json:"thumbnail"`
}

// Version is the published release of a plugin for one release line.
type Version struct {
	LastUpdate    string `json:"last_update"`
	URL           string `json:"url"`
	PluginVersion string `json:"plugin_version"`
}

// Version returns the entry recorded for releaseLine.
func (p *Plugin) Version(releaseLine string) (Version, bool) {
	v, ok := p.Versions[releaseLine]
	return v, ok
}

// SetVersion records v for releaseLine, keeping every other release line.
func (p *Plugin) SetVersion(releaseLine string, v Version) {
	if p.Versions == nil {
		p.Versions = make(map[string]Version)
	}
	p.Versions[releaseLine] = v
}

// ReleaseLines returns the release lines with a recorded version, sorted.
func (p *Plugin) ReleaseLines() []string {
	return slices.Sorted(maps.Keys(p.Versions))
}

// Clone returns a deep copy of p.
func (p *Plugin) Clone() *Plugin {
	if p == nil {
		return nil
	}
	c := *p
	c.License = cloneString(p.License)
	c.LastUpdate = cloneString(p.LastUpdate)
	c.Readme = cloneString(p.Readme)
	c.Homepage = cloneString(p.Homepage)
	c.SourceCode = cloneString(p.SourceCode)
	if p.Authors != nil {
		c.Authors = make([]Author, len(p.Authors))
		for i, a := range p.Authors {
			c.Authors[i] = Author{Name: a.Name, Email: cloneString(a.Email), Link: cloneString(a.Link)}
		}
	}
	if p.Images != nil {
		c.Images = make([]Image, len(p.Images))
		for i, img := range p.Images {
			c.Images[i] = Image{Image: img.Image, Thumbnail: cloneString(img.Thumbnail)}
		}
	}
	c.Versions = maps.Clone(p.Versions)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// String returns a pointer to s, or nil when s is empty. It is the
// conversion used for optional registry fields.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns *s or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
