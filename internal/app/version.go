package app

import (
	"fmt"
	"runtime/debug"
)

// Set via ldflags, e.g.
// go build -ldflags "-X github.com/heartmarshall/mindump-backend/internal/app.Version=1.0.0"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// BuildVersion formats the build info for startup logs and the health
// endpoint. Values not set by ldflags fall back to the VCS stamp the Go
// toolchain embeds.
func BuildVersion() string {
	commit, built := Commit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		commit, built = fromBuildSettings(info.Settings, commit, built)
	}
	return fmt.Sprintf("mindump %s (commit: %s, built: %s)", Version, commit, built)
}

func fromBuildSettings(settings []debug.BuildSetting, commit, built string) (string, string) {
	for _, s := range settings {
		switch {
		case s.Key == "vcs.revision" && commit == "unknown":
			commit = s.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case s.Key == "vcs.time" && built == "unknown":
			built = s.Value
		}
	}
	return commit, built
}
