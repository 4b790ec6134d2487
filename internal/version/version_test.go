package version

import (
	"runtime"
	"testing"
)

func TestGet(t *testing.T) {
	old := Version
	Version = "1.2.3"
	defer func() { Version = old }()

	info := Get()
	if info.Version != "1.2.3" || String() != "1.2.3" {
		t.Errorf("Version = %q, String() = %q", info.Version, String())
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q", info.GoVersion)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Platform = %q", info.Platform)
	}
	if info.GitCommit == "" {
		t.Error("GitCommit should never be empty")
	}
}
