// Package version holds build metadata for the hunkstage binary.
package version

import (
	"runtime/debug"
)

// Set with -ldflags "-X github.com/Sumatoshi-tech/hunkstage/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills unset metadata from the module build info, which
// "go install module@version" records.
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
		case "vcs.revision":
			if Commit == "none" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String renders the metadata for "hunkstage version".
func String() string {
	return "hunkstage " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
