package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
)

// Update the version as part of the version release process
var version = "0.1.0"

// appVersion prefers the release version, then MASCOT_VERSION, then the
// module build info.
func appVersion() string {
	if strings.TrimSpace(version) != "" {
		return strings.TrimSpace(version)
	}

	if v := os.Getenv("MASCOT_VERSION"); v != "" {
		return v
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if normalized := normalizeBuildVersion(info.Main.Version); normalized != "" {
			return normalized
		}

		var revision string
		var modified bool
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value == "true"
			}
		}

		if revision != "" {
			shortRev := revision
			if len(shortRev) > 7 {
				shortRev = shortRev[:7]
			}
			if modified {
				return fmt.Sprintf("dev-%s-dirty", shortRev)
			}
			return fmt.Sprintf("dev-%s", shortRev)
		}
	}

	return "dev"
}

func normalizeBuildVersion(v string) string {
	if v == "" || v == "(devel)" {
		return ""
	}
	return strings.TrimPrefix(v, "v")
}
