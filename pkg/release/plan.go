package release

import (
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/registry"
)

// Plan is the result of [Coordinator.MergeAll].
type Plan struct {
	// Registry is the merged registry, ready to be serialized.
	Registry *registry.Registry
	// Outcomes holds one outcome per suite, in forest order.
	Outcomes []Outcome
}

// Skipped reports whether the module id needs no repackaging. A module is
// skipped when every suite containing it was skipped; a module that belongs
// to no suite is not skipped.
func (p *Plan) Skipped(id module.Identity) bool {
	seen := false
	for _, o := range p.Outcomes {
		if !o.Entry.Contains(id) {
			continue
		}
		if !o.Skipped {
			return false
		}
		seen = true
	}
	return seen
}

// Updated returns the outcomes of suites that were merged.
func (p *Plan) Updated() []Outcome {
	var out []Outcome
	for _, o := range p.Outcomes {
		if !o.Skipped {
			out = append(out, o)
		}
	}
	return out
}

// SkippedRoots returns the outcomes of suites that were skipped.
func (p *Plan) SkippedRoots() []Outcome {
	var out []Outcome
	for _, o := range p.Outcomes {
		if o.Skipped {
			out = append(out, o)
		}
	}
	return out
}

// Changed reports whether any suite was merged.
func (p *Plan) Changed() bool {
	return len(p.Updated()) > 0
}
