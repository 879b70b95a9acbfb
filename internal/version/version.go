// Package version reports the orbis-ime build.
//
// Release builds stamp Version and Commit through ldflags:
//
//	go build -ldflags="-X github.com/muurk/orbis-ime/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/orbis-ime/internal/version.Commit=1a2b3c4" ./cmd/orbis-ime
//
// Anything left unset is taken from the module and VCS data the Go toolchain
// embeds in the binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	// Version is the release version, e.g. v0.3.0
	Version = ""
	// Commit is the short revision the binary was built from
	Commit = ""
)

// Info describes one build
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built,omitempty"` // VCS commit time, RFC 3339
	GoVersion string `json:"go"`
}

// String formats the build for --version style output
func (i Info) String() string {
	s := fmt.Sprintf("%s (commit: %s, %s)", i.Version, i.Commit, i.GoVersion)
	if i.Built != "" {
		s += " built " + i.Built
	}
	return s
}

var build Info

func init() {
	info, _ := debug.ReadBuildInfo()
	build = resolve(Version, Commit, info)
	Version, Commit = build.Version, build.Commit
}

// Get returns the build information
func Get() Info {
	return build
}

// resolve fills the fields ldflags left empty from the embedded build info
func resolve(v, commit string, info *debug.BuildInfo) Info {
	out := Info{Version: v, Commit: commit, GoVersion: runtime.Version()}

	if info != nil {
		settings := make(map[string]string, len(info.Settings))
		for _, s := range info.Settings {
			settings[s.Key] = s.Value
		}

		if out.Commit == "" {
			if rev := settings["vcs.revision"]; rev != "" {
				if len(rev) > 7 {
					rev = rev[:7]
				}
				if settings["vcs.modified"] == "true" {
					rev += "-dirty"
				}
				out.Commit = rev
			}
		}
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			out.Built = t.UTC().Format(time.RFC3339)
		}

		// go install module@version records the tag as the main module version
		if out.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			out.Version = info.Main.Version
		}
	}

	if out.Version == "" {
		out.Version = "dev"
	}
	if out.Commit == "" {
		out.Commit = "unknown"
	}
	return out
}
