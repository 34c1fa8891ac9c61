package suite

import (
	"slices"

	"github.com/matzehuels/pluginrelease/pkg/module"
)

// Entry is one distributable suite: a root module and the modules it
// absorbs. Members[0] is always the root.
type Entry struct {
	Root    module.Module
	Members []module.Module
}

// IsBundle reports whether the suite ships more than one module.
func (e Entry) IsBundle() bool { return len(e.Members) > 1 }

// Absorbed returns the members other than the root.
func (e Entry) Absorbed() []module.Module {
	if len(e.Members) == 0 {
		return nil
	}
	return e.Members[1:]
}

// Contains reports whether id is a member of the suite.
func (e Entry) Contains(id module.Identity) bool {
	return slices.ContainsFunc(e.Members, func(m module.Module) bool { return m.Identity == id })
}

// ExternalDependency is a declared dependency that matches no module of the
// classified set. It is ignored for classification and reported so callers
// can warn about it.
type ExternalDependency struct {
	From       module.Identity
	Dependency module.Identity
}

// SharedMember is a module claimed by more than one suite.
type SharedMember struct {
	Module module.Module
	Roots  []module.Identity
}

// Result is the outcome of [Classify].
type Result struct {
	// Entries holds one entry per root, in input order of the roots.
	Entries []Entry
	// External lists declared dependencies outside the module set.
	External []ExternalDependency
}

// Classify splits mods into distributable suites.
//
// A module absorbs every other module of the set whose identity it declares
// as a direct dependency. Only one hop is considered. A module is a root
// unless another module's absorption set is a strict superset of its own.
// Modules with set-equal absorption sets are all kept as roots.
//
// Classify never fails; an empty result means mods was empty. The result
// depends only on the order and content of mods.
func Classify(mods []module.Module) Result {
	n := len(mods)
	index := make(map[module.Identity][]int, n)
	for i, m := range mods {
		index[m.Identity] = append(index[m.Identity], i)
	}

	absorbs := make([]bitset, n)
	absorbed := make([][]int, n) // declaration order, excluding self
	var external []ExternalDependency

	for a, m := range mods {
		absorbs[a] = newBitset(n)
		absorbs[a].set(a)
		for _, dep := range m.Dependencies {
			targets, ok := index[dep]
			if !ok {
				external = append(external, ExternalDependency{From: m.Identity, Dependency: dep})
				continue
			}
			for _, b := range targets {
				if b == a || absorbs[a].has(b) {
					continue
				}
				absorbs[a].set(b)
				absorbed[a] = append(absorbed[a], b)
			}
		}
	}

	var entries []Entry
	for x := range mods {
		if !isRoot(x, absorbs) {
			continue
		}
		members := make([]module.Module, 0, 1+len(absorbed[x]))
		members = append(members, mods[x])
		for _, b := range absorbed[x] {
			members = append(members, mods[b])
		}
		entries = append(entries, Entry{Root: mods[x], Members: members})
	}

	return Result{Entries: entries, External: external}
}

func isRoot(x int, absorbs []bitset) bool {
	for y := range absorbs {
		if y != x && absorbs[x].strictSubsetOf(absorbs[y]) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no suite was found.
func (r Result) IsEmpty() bool { return len(r.Entries) == 0 }

// Roots returns the root module of every entry.
func (r Result) Roots() []module.Module {
	roots := make([]module.Module, len(r.Entries))
	for i, e := range r.Entries {
		roots[i] = e.Root
	}
	return roots
}

// Entry returns the suite whose root has the given identity.
func (r Result) Entry(root module.Identity) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Root.Identity == root {
			return e, true
		}
	}
	return Entry{}, false
}

// RootsOf returns the roots of every suite that contains id.
func (r Result) RootsOf(id module.Identity) []module.Identity {
	var roots []module.Identity
	for _, e := range r.Entries {
		if e.Contains(id) {
			roots = append(roots, e.Root.Identity)
		}
	}
	return roots
}

// Shared lists modules that belong to more than one suite, in order of
// first appearance.
func (r Result) Shared() []SharedMember {
	var shared []SharedMember
	seen := make(map[module.Identity]bool)
	for _, e := range r.Entries {
		for _, m := range e.Members {
			if seen[m.Identity] {
				continue
			}
			seen[m.Identity] = true
			if roots := r.RootsOf(m.Identity); len(roots) > 1 {
				shared = append(shared, SharedMember{Module: m, Roots: roots})
			}
		}
	}
	return shared
}

// Members returns every member of every suite in forest order. A module
// shared by several suites appears once per suite.
func (r Result) Members() []module.Module {
	var all []module.Module
	for _, e := range r.Entries {
		all = append(all, e.Members...)
	}
	return all
}
