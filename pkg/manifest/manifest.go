// Package manifest parses JAR manifest files (META-INF/MANIFEST.MF syntax).
//
// A manifest is a main section followed by optional named sections, each a
// list of "Key: value" attributes. Sections are separated by blank lines and
// long values continue on lines starting with a single space. Attribute
// names compare case-insensitively.
package manifest

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/pluginrelease/pkg/errors"
)

// Well-known module attributes.
const (
	ModuleName       = "OpenIDE-Module-Name"
	ShortDescription = "OpenIDE-Module-Short-Description"
	LongDescription  = "OpenIDE-Module-Long-Description"
	DisplayCategory  = "OpenIDE-Module-Display-Category"
	ShowInClient     = "AutoUpdate-Show-In-Client"
)

// Section is an ordered set of attributes.
type Section struct {
	// Name is the value of the Name attribute; empty for the main section.
	Name  string
	keys  []string
	attrs map[string]string
}

func newSection() *Section {
	return &Section{attrs: make(map[string]string)}
}

// Get returns the value of key.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.attrs[strings.ToLower(key)]
	return v, ok
}

// Value returns the value of key, or "" when absent.
func (s *Section) Value(key string) string {
	v, _ := s.Get(key)
	return v
}

// Keys returns the attribute names in file order.
func (s *Section) Keys() []string { return s.keys }

func (s *Section) set(key, value string) {
	lk := strings.ToLower(key)
	if _, ok := s.attrs[lk]; !ok {
		s.keys = append(s.keys, key)
	}
	s.attrs[lk] = value
}

// Manifest is a parsed manifest.
type Manifest struct {
	main     *Section
	sections []*Section
}

// Main returns the main section.
func (m *Manifest) Main() *Section { return m.main }

// Sections returns the named sections in file order.
func (m *Manifest) Sections() []*Section { return m.sections }

// Section returns the named section.
func (m *Manifest) Section(name string) (*Section, bool) {
	for _, s := range m.sections {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// Parse reads a manifest from r.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{main: newSection()}
	current := m.main
	inSection := true

	var key string
	var value strings.Builder
	flush := func() {
		if key != "" {
			current.set(key, value.String())
			if strings.EqualFold(key, "Name") && current != m.main && current.Name == "" {
				current.Name = value.String()
			}
		}
		key = ""
		value.Reset()
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		switch {
		case line == "":
			flush()
			inSection = false
		case strings.HasPrefix(line, " "):
			if key == "" {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "line %d: continuation without attribute", lineNo)
			}
			value.WriteString(line[1:])
		default:
			flush()
			k, v, ok := strings.Cut(line, ":")
			if !ok || k == "" || strings.ContainsAny(k, " \t") {
				return nil, errors.New(errors.ErrCodeInvalidManifest, "line %d: invalid attribute %q", lineNo, line)
			}
			if !inSection {
				current = newSection()
				m.sections = append(m.sections, current)
				inSection = true
			}
			key = k
			value.WriteString(strings.TrimPrefix(v, " "))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest")
	}
	flush()
	return m, nil
}

// ReadFile parses the manifest at path.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "cannot locate manifest at %s", path)
		}
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "%s", path)
	}
	return m, nil
}
