package mode

import (
	"testing"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/flux"
	"github.com/matzehuels/splice/pkg/typeref"
)

func testTypes() (float, slot *typeref.Type) {
	reg := typeref.NewRegistry()
	float = reg.MustDefine("float", typeref.KindValue, typeref.Literal())
	slot = reg.MustDefine("Flux.World.Slot", typeref.KindReference)
	return float, slot
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"My Value!", "My Value"},
		{"Root/Child", "RootChild"},
		{"a.b_c", "a.b_c"},
		{"tab\there", "tabhere"},
		{"price$ + tax%", "price  tax"},
		{"Ünïcödé 42", "Ünïcödé 42"},
		{"(null)", "null"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDirect(t *testing.T) {
	float, slot := testTypes()
	root := flux.NewRoot("Imports")
	m := NewDirect(root)
	table := ImportTable{float: {"a", "b"}, slot: {"Root"}}

	if _, ok := m.Import(float, 0); ok {
		t.Error("Import succeeded before Prepare")
	}
	m.Prepare(table)
	c, ok := root.Collection("float")
	if !ok || c.Len() != 2 {
		t.Fatalf("float collection = %v, %v, want 2 entries", c, ok)
	}
	c.At(1).Value = float32(4)
	target := root.AddChild("Target")
	sc, _ := root.Collection("Flux.World.Slot")
	sc.At(0).Value = target

	if v, ok := m.Import(float, 1); !ok || v != float32(4) {
		t.Errorf("Import(float, 1) = %v, %v, want 4, true", v, ok)
	}
	if v, ok := m.Import(slot, 0); !ok || v != target {
		t.Errorf("Import(slot, 0) = %v, %v, want Target", v, ok)
	}
	if _, ok := m.Import(float, 0); ok {
		t.Error("Import of empty entry succeeded")
	}
	if f, ok := m.ImportField(float, 0); !ok || f != c.At(0) {
		t.Error("ImportField(float, 0) did not return the entry")
	}
	if _, ok := m.Import(float, 2); ok {
		t.Error("Import out of range succeeded")
	}

	m.Prepare(ImportTable{float: {"a"}})
	if c.Len() != 2 {
		t.Errorf("Prepare shrank the collection to %d", c.Len())
	}
}

func TestSpaceScopedSanitizedSuffix(t *testing.T) {
	float, _ := testTypes()
	root := flux.NewRoot("Imports")
	sp := root.EnsureSpace("Imports")
	v := root.AttachVariable(flux.NewVariable("Imports/My Value", float))
	v.Field.Value = float32(1.5)
	m := NewSpaceScoped(root, ImportTable{float: {"My Value!"}})

	got, ok := m.Import(float, 0)
	if !ok || got != float32(1.5) {
		t.Errorf("Import(float, 0) = %v, %v, want 1.5, true", got, ok)
	}
	if f, ok := m.ImportField(float, 0); !ok || f != v.Field {
		t.Error("ImportField did not return the variable's field")
	}
	if _, ok := m.Import(float, 1); ok {
		t.Error("Import out of range succeeded")
	}
	if sp.Name != "Imports" {
		t.Errorf("space name = %q", sp.Name)
	}
}

func TestSpaceScopedMissingSpace(t *testing.T) {
	float, _ := testTypes()
	m := NewSpaceScoped(flux.NewRoot("Imports"), ImportTable{float: {"x"}})
	if _, ok := m.Import(float, 0); ok {
		t.Error("Import without a space succeeded")
	}
}

func TestSpaceScopedPrepare(t *testing.T) {
	float, slot := testTypes()
	root := flux.NewRoot("Imports")
	table := ImportTable{float: {"My Value!", "Speed"}, slot: {"Root/Head"}}
	m := NewSpaceScoped(root, table)
	m.Prepare(table)
	m.Prepare(table)

	sp := root.Space()
	if sp == nil || sp.Name != DefaultSpace {
		t.Fatalf("space = %+v, want %s", sp, DefaultSpace)
	}
	if got := len(sp.Variables()); got != 3 {
		t.Errorf("len(Variables()) = %d, want 3", got)
	}
	if _, ok := sp.FindSuffix(slot, "RootHead"); !ok {
		t.Error("variable for Root/Head missing")
	}
	if _, ok := m.ImportField(float, 1); !ok {
		t.Error("ImportField(float, 1) failed after Prepare")
	}
}

func TestTaggedSlot(t *testing.T) {
	float, slot := testTypes()
	root := flux.NewRoot("Imports")
	table := ImportTable{float: {"My Value!"}, slot: {"Head"}}
	m := NewTaggedSlot(root, table)
	m.Prepare(table)

	child, ok := root.Child("My Value")
	if !ok {
		t.Fatal("Prepare did not create the child slot")
	}
	vars := child.Variables()
	vars[0].Field.Value = float32(2)
	if got, ok := m.Import(float, 0); !ok || got != float32(2) {
		t.Errorf("Import(float, 0) = %v, %v, want 2", got, ok)
	}
	if _, ok := m.Import(slot, 0); ok {
		t.Error("Import of unset reference succeeded")
	}
	if _, ok := m.ImportField(slot, 0); !ok {
		t.Error("ImportField(slot, 0) failed")
	}
	if _, ok := m.ImportField(slot, 1); ok {
		t.Error("ImportField out of range succeeded")
	}
}

func TestCleanup(t *testing.T) {
	root := flux.NewRoot("Dest")
	keep := root.AddChild("Keep")
	old := root.AddChild("Old")
	old.Tag = CompiledTag

	for _, m := range []CompileMode{NewDirect(root), NewSpaceScoped(root, nil), NewTaggedSlot(root, nil)} {
		m.Cleanup(root)
	}
	children := root.Children()
	if len(children) != 1 || children[0] != keep {
		t.Errorf("children after Cleanup = %d, want [Keep]", len(children))
	}
}

func TestParse(t *testing.T) {
	root := flux.NewRoot("R")
	tests := []struct {
		name     string
		want     string
		monopack bool
	}{
		{"direct", "direct", true},
		{"", "direct", true},
		{"Barebones", "direct", true},
		{"space", "space", false},
		{"solder", "space", false},
		{"tagged", "tagged", false},
		{"redprint", "tagged", false},
	}
	for _, tt := range tests {
		m, err := Parse(tt.name, root, nil)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.name, err)
			continue
		}
		if m.Name() != tt.want || m.SupportsMonopack() != tt.monopack {
			t.Errorf("Parse(%q) = %s/%v, want %s/%v", tt.name, m.Name(), m.SupportsMonopack(), tt.want, tt.monopack)
		}
	}
	if _, err := Parse("bogus", root, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Parse(bogus) error = %v, want INVALID_INPUT", err)
	}
	if _, err := Parse("direct", nil, nil); err == nil {
		t.Error("Parse with nil root succeeded")
	}
}
