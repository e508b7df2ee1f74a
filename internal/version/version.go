// Package version reports which sitebuilder binary produced a site.
package version

import (
	"runtime/debug"
	"sync"
)

// Version, Commit and Date are set by release builds:
//
//	go build -ldflags "-X git.home.luguber.info/inful/sitebuilder/internal/version.Version=v1.2.0"
//
// Unset values are filled from the module build info when available.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

var fill sync.Once

func resolve() {
	fill.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if ok {
			if Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
				Version = info.Main.Version
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					if Commit == "" {
						Commit = s.Value
					}
				case "vcs.time":
					if Date == "" {
						Date = s.Value
					}
				}
			}
		}
		if Version == "" {
			Version = "dev"
		}
		if len(Commit) > 12 {
			Commit = Commit[:12]
		}
	})
}

// String is the version line printed by --version.
func String() string {
	resolve()
	s := Version
	if Commit != "" {
		s += " (" + Commit
		if Date != "" {
			s += ", " + Date
		}
		s += ")"
	}
	return s
}

// Generator identifies the tool in generated output, e.g. the HTML watermark.
func Generator() string {
	resolve()
	return "sitebuilder " + Version
}
