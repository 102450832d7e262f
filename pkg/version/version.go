// Package version holds build-time identifying information, overridden via
// -ldflags at build time (e.g. -X github.com/datapipeline/trigger-coordinator/pkg/version.Version=v1.2.3).
package version

// Version, Commit, BuildDate, and Tag are populated by the release build via
// -ldflags; they default to "dev"/"unknown" for local builds.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
	Tag       = "unknown"
)

// BuildInfo is a snapshot of the package-level build variables.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
	Tag       string
}

// Info returns the current build information.
func Info() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		Tag:       Tag,
	}
}
