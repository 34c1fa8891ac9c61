// Package suite classifies a flat set of modules into distributable suites.
//
// # Overview
//
// A plugin repository builds several modules. Some of them are plugins a
// user installs, others are libraries that only exist to be shipped along
// with a plugin. [Classify] separates the two: it returns a forest where
// each [Entry] is a root module plus the modules it absorbs.
//
// # Absorption
//
// Module A absorbs module B when A declares a dependency whose identity
// (namespace, name and version) equals B's identity exactly. The
// absorption set of A is A itself plus every module it absorbs. Only
// direct declarations count; absorption is not transitive. Declarations
// that match nothing in the set are reported in [Result.External].
//
// A module is a root when no other module's absorption set strictly
// contains its own. Given
//
//	app -> core
//	core
//	viewer
//
// the forest is [app core] and [viewer]: core is contained in app's set,
// while viewer is a singleton root.
//
// # Ties and shared members
//
// Two modules that depend on each other with otherwise equal absorption
// sets are both kept as roots. A library absorbed by two unrelated roots,
// or the middle of a dependency chain, ends up in more than one entry;
// [Result.Shared] reports those modules so callers can decide whether to
// accept or reject the layout.
//
// # Implementation
//
// Modules are addressed by their index in the input slice and absorption
// sets are bit sets over those indices, so containment checks are a few
// word operations and never depend on pointer identity.
package suite
