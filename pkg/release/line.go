package release

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/pluginrelease/pkg/errors"
)

// SnapshotSuffix marks a development version of the host platform.
const SnapshotSuffix = "-SNAPSHOT"

// MinorVersion returns the "major.minor" part of a release version, keeping
// a snapshot suffix: "0.9.3" gives "0.9", "0.9.3-SNAPSHOT" gives
// "0.9-SNAPSHOT". Versions need at least a major and a minor number; the
// only pre-release accepted is SNAPSHOT.
func MinorVersion(version string) (string, error) {
	raw := strings.TrimSpace(version)
	core, _, _ := strings.Cut(raw, "-")
	if !strings.Contains(core, ".") {
		return "", errors.New(errors.ErrCodeInvalidVersion, "cannot derive minor version from %q", version)
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidVersion, err, "cannot derive minor version from %q", version)
	}
	minor := fmt.Sprintf("%d.%d", v.Major(), v.Minor())
	switch v.Prerelease() {
	case "":
		return minor, nil
	case strings.TrimPrefix(SnapshotSuffix, "-"):
		return minor + SnapshotSuffix, nil
	}
	return "", errors.New(errors.ErrCodeInvalidVersion, "unsupported pre-release in %q", version)
}

// IsSnapshot reports whether version is a development version.
func IsSnapshot(version string) bool {
	return strings.HasSuffix(version, SnapshotSuffix)
}

// SameLine reports whether two release versions share a minor version.
// Unparseable versions never match.
func SameLine(a, b string) bool {
	ma, err := MinorVersion(a)
	if err != nil {
		return false
	}
	mb, err := MinorVersion(b)
	if err != nil {
		return false
	}
	return ma == mb
}
