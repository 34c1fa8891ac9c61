package registry

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/matzehuels/pluginrelease/pkg/errors"
)

// New returns an empty registry.
func New() *Registry {
	return &Registry{Plugins: []*Plugin{}}
}

// Load decodes a registry snapshot.
//
// Empty (or whitespace-only) input yields an empty registry: a release line
// published for the first time has no snapshot yet. Any structural problem
// fails with [errors.ErrCodeMalformedRegistry]:
//   - invalid JSON or a value of the wrong type
//   - a top-level value that is not an object, or no "plugins" key
//   - a plugin record without an id
func Load(data []byte) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return New(), nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedRegistry, err, "decode registry")
	}
	raw, ok := top["plugins"]
	if !ok {
		return nil, errors.New(errors.ErrCodeMalformedRegistry, "registry has no \"plugins\" key")
	}

	var plugins []*Plugin
	if err := json.Unmarshal(raw, &plugins); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedRegistry, err, "decode plugins")
	}

	r := New()
	for i, p := range plugins {
		if p == nil {
			return nil, errors.New(errors.ErrCodeMalformedRegistry, "plugin #%d is null", i)
		}
		if p.ID == "" {
			return nil, errors.New(errors.ErrCodeMalformedRegistry, "plugin #%d has no id", i)
		}
		r.Plugins = append(r.Plugins, p)
	}
	return r, nil
}

// Read decodes a registry snapshot from rd. See [Load].
func Read(rd io.Reader) (*Registry, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedRegistry, err, "read registry")
	}
	return Load(data)
}

// Len returns the number of plugins.
func (r *Registry) Len() int { return len(r.Plugins) }

// IDs returns the plugin ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.Plugins))
	for i, p := range r.Plugins {
		ids[i] = p.ID
	}
	return ids
}

// Find returns the first plugin with the given id.
func (r *Registry) Find(id string) (*Plugin, bool) {
	i := r.index(id)
	if i < 0 {
		return nil, false
	}
	return r.Plugins[i], true
}

func (r *Registry) index(id string) int {
	for i, p := range r.Plugins {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Upsert creates or updates the plugin with the given id.
//
// build receives a copy of the existing record (found is true) or a fresh
// record holding only the id. When build succeeds the copy replaces the
// stored record at the same position, or is appended to the registry. When
// build fails the registry is left untouched and the error is returned.
func (r *Registry) Upsert(id string, build func(p *Plugin, found bool) error) (*Plugin, error) {
	i := r.index(id)

	var p *Plugin
	if i >= 0 {
		p = r.Plugins[i].Clone()
	} else {
		p = &Plugin{ID: id}
	}

	if err := build(p, i >= 0); err != nil {
		return nil, err
	}
	p.ID = id

	if i >= 0 {
		r.Plugins[i] = p
	} else {
		r.Plugins = append(r.Plugins, p)
	}
	return p, nil
}

// Clone returns a deep copy of r.
func (r *Registry) Clone() *Registry {
	c := &Registry{Plugins: make([]*Plugin, len(r.Plugins))}
	for i, p := range r.Plugins {
		c.Plugins[i] = p.Clone()
	}
	return c
}

// Marshal encodes the registry as indented JSON. Plugins keep registry
// order, version keys are sorted, and absent optional fields are written
// as null.
func (r *Registry) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the registry to w. See [Registry.Marshal].
func (r *Registry) Write(w io.Writer) error {
	out := r
	if r.Plugins == nil {
		out = New()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode registry")
	}
	return nil
}
