package release

import (
	"context"
	"slices"
	"strings"

	"github.com/matzehuels/pluginrelease/pkg/errors"
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/registry"
)

// Description is the metadata of a plugin as computed for one release.
// Name, ShortDescription, LongDescription and Category are mandatory.
type Description struct {
	Name             string
	ShortDescription string
	LongDescription  string
	Category         string
	License          string
	Authors          []registry.Author
	Readme           string
	Images           []registry.Image
	Homepage         string
	SourceCode       string
}

// Provider computes the description of a suite root. members holds the
// whole suite, root first.
type Provider interface {
	Describe(ctx context.Context, root module.Module, members []module.Module) (Description, error)
}

// ProviderFunc adapts a function to [Provider].
type ProviderFunc func(ctx context.Context, root module.Module, members []module.Module) (Description, error)

// Describe implements Provider.
func (f ProviderFunc) Describe(ctx context.Context, root module.Module, members []module.Module) (Description, error) {
	return f(ctx, root, members)
}

// DefaultCategories are the display categories accepted by the plugin portal.
var DefaultCategories = []string{
	"Layout",
	"Export",
	"Import",
	"Data Laboratory",
	"Filter",
	"Generator",
	"Metric",
	"Preview",
	"Tool",
	"Appearance",
	"Clustering",
	"Other Category",
}

// Check verifies the mandatory fields of d. categories lists the accepted
// categories; nil means [DefaultCategories].
func (d Description) Check(categories []string) error {
	required := []struct {
		field string
		value string
	}{
		{"name", d.Name},
		{"shortDescription", d.ShortDescription},
		{"longDescription", d.LongDescription},
		{"category", d.Category},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return errors.New(errors.ErrCodeMissingMetadata, "mandatory field %q is empty", r.field)
		}
	}

	if categories == nil {
		categories = DefaultCategories
	}
	if !slices.Contains(categories, d.Category) {
		cause := errors.New(errors.ErrCodeInvalidCategory, "category %q is not one of %s", d.Category, strings.Join(categories, ", "))
		return errors.Wrap(errors.ErrCodeMissingMetadata, cause, "invalid category")
	}
	return nil
}

// apply copies d onto p. Optional fields left empty are cleared.
func (d Description) apply(p *registry.Plugin) {
	p.Name = d.Name
	p.ShortDescription = d.ShortDescription
	p.LongDescription = d.LongDescription
	p.Category = d.Category
	p.License = registry.String(d.License)
	p.Authors = slices.Clone(d.Authors)
	p.Readme = registry.String(d.Readme)
	p.Images = slices.Clone(d.Images)
	p.Homepage = registry.String(d.Homepage)
	p.SourceCode = registry.String(d.SourceCode)
}
