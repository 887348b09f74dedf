package buildinfo

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	got := Current()
	if got.Version != Version || got.Commit != Commit || got.Date != Date {
		t.Errorf("Current() = %+v", got)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "drawview/"+Version {
		t.Errorf("UserAgent() = %q", got)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	for _, want := range []string{"{{.Name}} version " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() = %q, missing %q", tmpl, want)
		}
	}
}
