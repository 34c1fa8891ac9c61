package release

import (
	"github.com/matzehuels/pluginrelease/pkg/module"
	"github.com/matzehuels/pluginrelease/pkg/suite"
)

// Default file extensions.
const (
	DefaultSingleExt = "nbm"
	DefaultBundleExt = "zip"
)

// PathResolver names the distributable file of a suite. A suite with a
// single member ships that member's artifact; a larger suite ships an
// archive holding every member artifact.
type PathResolver struct {
	SingleExt string
	BundleExt string
}

// DefaultPathResolver returns a resolver with the default extensions.
func DefaultPathResolver() PathResolver {
	return PathResolver{SingleExt: DefaultSingleExt, BundleExt: DefaultBundleExt}
}

// Resolve returns "{name}-{version}.{ext}" for root, where ext depends on
// the number of members.
func (r PathResolver) Resolve(root module.Module, members []module.Module) string {
	ext := r.singleExt()
	if len(members) > 1 {
		ext = r.bundleExt()
	}
	return fileName(root.Identity, ext)
}

// ResolveEntry resolves the file name of a classified suite.
func (r PathResolver) ResolveEntry(e suite.Entry) string {
	return r.Resolve(e.Root, e.Members)
}

// MemberFile returns the single artifact name of m.
func (r PathResolver) MemberFile(m module.Module) string {
	return fileName(m.Identity, r.singleExt())
}

// MemberFiles returns the single artifact name of every member, in order.
func (r PathResolver) MemberFiles(members []module.Module) []string {
	files := make([]string, len(members))
	for i, m := range members {
		files[i] = r.MemberFile(m)
	}
	return files
}

func (r PathResolver) singleExt() string {
	if r.SingleExt == "" {
		return DefaultSingleExt
	}
	return r.SingleExt
}

func (r PathResolver) bundleExt() string {
	if r.BundleExt == "" {
		return DefaultBundleExt
	}
	return r.BundleExt
}

func fileName(id module.Identity, ext string) string {
	return id.Name + "-" + id.Version + "." + ext
}
