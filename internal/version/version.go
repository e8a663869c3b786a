// Package version holds the build identity of the domkey binary.
package version

import (
	"runtime"
	"runtime/debug"
)

// Overridden at build time:
// go build -ldflags "-X domkey/internal/version.Version=1.0.0 -X domkey/internal/version.Commit=abc123"
var (
	Version   = "0.3.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func init() {
	if Commit != "unknown" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		Commit, BuildDate = fromBuildInfo(info, Commit, BuildDate)
	}
}

// fromBuildInfo fills commit and date from the VCS stamp the go tool embeds.
func fromBuildInfo(info *debug.BuildInfo, commit, date string) (string, string) {
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			commit = s.Value
		case "vcs.time":
			date = s.Value
		}
	}
	return commit, date
}

// Info returns the version with a short commit suffix when one is known.
func Info() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return Version + " (" + Commit[:7] + ")"
	}
	return Version
}

// Full returns multi-line version information for `domkey version`.
func Full() string {
	return "domkey version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate + "\n" +
		"Go: " + runtime.Version()
}
