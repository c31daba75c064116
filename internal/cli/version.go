package cli

import (
	"runtime/debug"
	"strings"
)

const (
	devVersion         = "dev"
	goDevelMainVersion = "(devel)"
	vcsRevisionKey     = "vcs.revision"
	vcsModifiedKey     = "vcs.modified"
	shortRevisionLen   = 12
)

var readBuildInfo = debug.ReadBuildInfo

// resolvedVersion prefers an ldflags-injected version, then the module version,
// then the short VCS revision recorded by the toolchain.
func resolvedVersion(injected string) string {
	injected = strings.TrimSpace(injected)
	if injected != "" && injected != devVersion {
		return injected
	}
	if v := buildInfoVersion(); v != "" {
		return v
	}
	if injected != "" {
		return injected
	}
	return devVersion
}

func buildInfoVersion() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	if v := strings.TrimSpace(info.Main.Version); v != "" && v != goDevelMainVersion {
		return v
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case vcsRevisionKey:
			revision = strings.TrimSpace(setting.Value)
		case vcsModifiedKey:
			dirty = strings.EqualFold(strings.TrimSpace(setting.Value), "true")
		}
	}
	if revision == "" {
		return ""
	}
	if len(revision) > shortRevisionLen {
		revision = revision[:shortRevisionLen]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}
