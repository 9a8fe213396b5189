package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version of tabprep. APIVersion versions the viewer's JSON routes.
const (
	Version    = "0.3.0"
	APIVersion = "v1"
)

// Stamped with -ldflags "-X tabprep/pkg/contracts.GitCommit=..."; when
// unset, GitCommit falls back to the vcs revision embedded by the go tool.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is what `tabprep version --json` prints
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
	APIVersion   string `json:"api_version"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    commit(),
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		APIVersion:   APIVersion,
	}
}

func GetVersionString() string {
	return "tabprep v" + Version
}

// GetFullVersionString is the one-line form printed by `tabprep version`
func GetFullVersionString() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s (built: %s, commit: %s, go: %s, os: %s/%s)",
		GetVersionString(), info.BuildTime, info.GitCommit, info.GoVersion, info.OS, info.Architecture)
}

func commit() string {
	if GitCommit != "unknown" {
		return GitCommit
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return GitCommit
}
