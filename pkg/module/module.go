// Package module defines the value types the release pipeline operates on:
// artifact identities and buildable module descriptors.
//
// An [Identity] is the (namespace, name, version) triple of a Maven-style
// artifact. Identities are comparable values, so they can be used directly
// as map keys and compared with ==. There is no partial or range matching:
// two identities are the same artifact only when all three parts match.
//
// A [Module] is one buildable unit of a plugin repository together with
// the identities it declares as dependencies. Modules are created once per
// run from parsed build descriptors and are treated as immutable.
package module

import (
	"fmt"
	"strings"

	"github.com/matzehuels/pluginrelease/pkg/errors"
)

// Identity identifies an artifact by namespace (group), name (artifact id)
// and version.
type Identity struct {
	Namespace string `json:"namespace" yaml:"namespace"`
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
}

// String renders the identity as "namespace:name:version".
func (id Identity) String() string {
	return id.Namespace + ":" + id.Name + ":" + id.Version
}

// Validate checks that every part is set and safe to use in file names.
func (id Identity) Validate() error {
	if err := errors.ValidateIdentityPart("namespace", id.Namespace); err != nil {
		return err
	}
	if err := errors.ValidateIdentityPart("name", id.Name); err != nil {
		return err
	}
	return errors.ValidateIdentityPart("version", id.Version)
}

// ParseIdentity parses "namespace:name:version".
func ParseIdentity(s string) (Identity, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Identity{}, errors.New(errors.ErrCodeInvalidInput, "identity %q must have the form namespace:name:version", s)
	}
	id := Identity{Namespace: parts[0], Name: parts[1], Version: parts[2]}
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Module is a buildable unit with its declared dependencies.
//
// Only Identity and Dependencies take part in classification. ReleaseLine
// groups modules by the host platform version they target. The remaining
// fields are carried for collaborators (metadata lookup, packaging) and
// never affect identity comparison.
type Module struct {
	Identity     Identity   `json:"identity"`
	Dependencies []Identity `json:"dependencies,omitempty"`
	ReleaseLine  string     `json:"release_line,omitempty"`

	// DisplayName is the human readable project name, used in logs.
	DisplayName string `json:"display_name,omitempty"`
	// Dir is the module base directory, if the module was discovered on disk.
	Dir string `json:"dir,omitempty"`
	// Packaging is the build packaging type (e.g. "nbm").
	Packaging string `json:"packaging,omitempty"`
}

// Label returns DisplayName, or the artifact name when no display name is set.
func (m Module) Label() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Identity.Name
}

// String implements fmt.Stringer.
func (m Module) String() string {
	return fmt.Sprintf("%s (%s)", m.Label(), m.Identity)
}
