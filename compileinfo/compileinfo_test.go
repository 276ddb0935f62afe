package compileinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.18",
		Path:      "github.com/carbocation/microview/cmd/microview",
		Main:      debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2022-05-01T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	c := fromBuildInfo(bi)
	if c.Commit != "abc123" || !c.Modified || c.Version != "(devel)" {
		t.Errorf("unexpected compile info %+v", c)
	}

	s := c.String()
	for _, want := range []string{"abc123", "go1.18", "modified"} {
		if !strings.Contains(s, want) {
			t.Errorf("%q does not mention %q", s, want)
		}
	}
}

func TestStringWithoutBuildInfo(t *testing.T) {
	if s := (CompileInfo{}).String(); !strings.Contains(s, "not available") {
		t.Errorf("unexpected message %q", s)
	}
}
