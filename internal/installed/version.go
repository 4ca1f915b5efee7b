package installed

import (
	"strings"

	"golang.org/x/mod/semver"
)

// compareVersions orders module versions by semver precedence. Manifest
// versions are written without the "v" prefix ("2.10.1", "3.0.0-beta.1");
// a missing minor or patch counts as zero. Returns -1, 0, or 1.
func compareVersions(a, b string) int {
	return semver.Compare(canonicalVersion(a), canonicalVersion(b))
}

func canonicalVersion(v string) string {
	if v == "" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
