// Package version holds build metadata injected with -ldflags.
package version

import "runtime/debug"

// Build metadata, overridden at link time:
//
//	-ldflags "-X github.com/Sumatoshi-tech/pydeps/pkg/version.Version=v1.2.0"
var (
	Version = "dev"
	Commit  = "<unknown>"
	Date    = "<unknown>"
)

const (
	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
)

// InitBinaryVersion fills metadata left at its default from the module build
// info, so `go install` builds still report a version and revision.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case settingRevision:
			if Commit == "<unknown>" {
				Commit = setting.Value
			}
		case settingTime:
			if Date == "<unknown>" {
				Date = setting.Value
			}
		}
	}
}
