package buildinfo

import (
	"strings"
	"testing"

	"github.com/matzehuels/splice/pkg/graphdoc"
)

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.Commit != Commit || info.Date != Date {
		t.Errorf("Get() = %+v, want package variables", info)
	}
	if info.DocumentVersion != graphdoc.CurrentVersion {
		t.Errorf("DocumentVersion = %d, want %d", info.DocumentVersion, graphdoc.CurrentVersion)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} version "+Version) {
		t.Errorf("Template() = %q, want prefix with version", tmpl)
	}
	if !strings.Contains(String(), "commit: "+Commit) {
		t.Errorf("String() = %q, want commit line", String())
	}
}
