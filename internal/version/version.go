// Package version reports the cjbootstrap build. Release builds set the
// variables with -ldflags "-X git.home.luguber.info/inful/cjbootstrap/internal/version.Version=v1.0.0";
// otherwise the module and VCS stamps embedded by the go tool are used.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(info)
	}
}

// fillFromBuildInfo replaces values still at "unknown" with the stamps in info.
func fillFromBuildInfo(info *debug.BuildInfo) {
	if Version == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && GitCommit == "unknown":
			GitCommit = shortRevision(s.Value)
		case s.Key == "vcs.time" && BuildTime == "unknown":
			BuildTime = s.Value
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("cjbootstrap %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
