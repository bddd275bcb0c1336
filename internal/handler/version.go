package handler

import (
	"net/http"
	"runtime"
)

// VersionInfo identifies the running build
type VersionInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	BuildTime string `json:"build_time,omitempty"`
	GitCommit string `json:"git_commit,omitempty"`
}

// Build-time variables, injected with -ldflags "-X ..."
var (
	Version   = "dev"
	BuildTime = ""
	GitCommit = ""
)

// HandleVersion reports the build. A version baked in at link time wins over configuredVersion.
func HandleVersion(service, configuredVersion string) http.HandlerFunc {
	info := VersionInfo{
		Service:   service,
		Version:   resolveVersion(configuredVersion),
		GoVersion: runtime.Version(),
		BuildTime: BuildTime,
		GitCommit: GitCommit,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, info)
	}
}

func resolveVersion(configured string) string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if configured != "" {
		return configured
	}
	return "dev"
}
