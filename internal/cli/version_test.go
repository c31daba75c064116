package cli

import (
	"runtime/debug"
	"testing"
)

func stubBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() {
		readBuildInfo = orig
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return info, ok
	}
}

func TestResolvedVersion(t *testing.T) {
	tests := []struct {
		name     string
		injected string
		info     *debug.BuildInfo
		ok       bool
		want     string
	}{
		{
			name:     "injected version wins",
			injected: "v1.2.3",
			info:     &debug.BuildInfo{Main: debug.Module{Version: "v9.9.9"}},
			ok:       true,
			want:     "v1.2.3",
		},
		{
			name:     "module version",
			injected: devVersion,
			info:     &debug.BuildInfo{Main: debug.Module{Version: "v0.4.0"}},
			ok:       true,
			want:     "v0.4.0",
		},
		{
			name: "dirty vcs revision",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: goDevelMainVersion},
				Settings: []debug.BuildSetting{
					{Key: vcsRevisionKey, Value: "0123456789abcdef"},
					{Key: vcsModifiedKey, Value: "true"},
				},
			},
			ok:   true,
			want: "0123456789ab-dirty",
		},
		{
			name: "clean short revision",
			info: &debug.BuildInfo{
				Main:     debug.Module{Version: goDevelMainVersion},
				Settings: []debug.BuildSetting{{Key: vcsRevisionKey, Value: "abc123"}},
			},
			ok:   true,
			want: "abc123",
		},
		{
			name: "no build info",
			want: devVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubBuildInfo(t, tt.info, tt.ok)
			if got := resolvedVersion(tt.injected); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
