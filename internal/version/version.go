// Package version provides build metadata for the reslist binary.
// Values are injected at compile time via -ldflags and fall back to the
// VCS stamp Go embeds in module builds.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/hupe1980/reslist/internal/options"
)

// Build-time values injected via -ldflags.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = "unknown"
)

// Info holds the build metadata for the binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
	// OptionsRecord is the version written into persisted options files.
	OptionsRecord string `json:"optionsRecord"`
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return Info{
		Version:       version,
		GitCommit:     shortCommit(resolveCommit(gitCommit, vcsSettings())),
		BuildDate:     buildDate,
		GoVersion:     runtime.Version(),
		Platform:      fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		OptionsRecord: options.RecordVersion,
	}
}

// String returns a human-readable single-line version string.
func (i Info) String() string {
	return fmt.Sprintf("reslist %s (commit: %s, built: %s, %s %s, options record %s)",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion, i.Platform, i.OptionsRecord)
}

// JSON returns the version info as indented JSON.
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling version info: %w", err)
	}

	return string(data), nil
}

func vcsSettings() map[string]string {
	out := map[string]string{}

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			out[s.Key] = s.Value
		}
	}

	return out
}

// resolveCommit prefers the injected commit, then the embedded VCS revision.
func resolveCommit(injected string, settings map[string]string) string {
	if injected != "" {
		return injected
	}

	if rev := settings["vcs.revision"]; rev != "" {
		if settings["vcs.modified"] == "true" {
			return rev + "-dirty"
		}

		return rev
	}

	return "none"
}

// shortCommit truncates a commit SHA to 7 characters, keeping a dirty marker.
func shortCommit(commit string) string {
	const dirty = "-dirty"

	suffix := ""
	if len(commit) > len(dirty) && commit[len(commit)-len(dirty):] == dirty {
		suffix = dirty
		commit = commit[:len(commit)-len(dirty)]
	}

	if len(commit) > 7 {
		commit = commit[:7]
	}

	return commit + suffix
}
