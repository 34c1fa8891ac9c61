// Package release merges freshly described plugins into a registry and
// decides which suites need to be repackaged.
//
// # Skip rule
//
// A suite is skipped when the registry already records, for the target
// release line, the exact version of its root module:
//
//	registry["foo"].versions["0.9.3"].plugin_version == "2.0.0"  // root foo 2.0.0: skip
//	registry["foo"].versions["0.9.3"].plugin_version == "2.0.0"  // root foo 2.0.1: update
//
// A skipped suite leaves its record untouched and the skip applies to every
// member, so the pipeline neither rebuilds nor recopies any of them.
//
// # Merging
//
// For every suite that is not skipped the [Provider] describes the root,
// the mandatory fields are checked, the packaging file name is computed by
// a [PathResolver] and the record is upserted with a new version entry for
// the release line. Entries for other release lines are kept.
//
// [Coordinator.MergeAll] works on a private copy of the registry, so a
// batch either merges completely or leaves the caller's registry as it was.
package release
