package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.3"
	if got := String(); !strings.HasPrefix(got, "gitpkg v1.2.3\n") {
		t.Errorf("String() = %q, want prefix %q", got, "gitpkg v1.2.3\n")
	}
	if got := Template(); !strings.Contains(got, "version v1.2.3") {
		t.Errorf("Template() = %q, missing version", got)
	}
	if got := Labels()["version"]; got != "v1.2.3" {
		t.Errorf("Labels()[version] = %q, want %q", got, "v1.2.3")
	}
}
