// Package bundle produces the distributable files of an update site.
//
// A suite is shipped as one stored (uncompressed) zip archive holding the
// single-module artifacts of all its members; see [CreateSuiteArchive].
// [WriteUpdateCatalog] assembles updates.xml from the Info/info.xml entry
// embedded in every .nbm of a directory, and [Gzip] writes the compressed
// copy served next to it.
package bundle
