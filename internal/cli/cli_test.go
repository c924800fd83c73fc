package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/interchange"
)

const addJSON = `{
  "version": 1,
  "nodes": [
    {"id": "v", "x": 0, "type": {"fullTypeName": "Flux.Core.ValueInput", "genericParameters": [{"fullTypeName": "float"}]}},
    {"id": "add", "x": 1, "type": {"fullTypeName": "Flux.Math.Add", "genericParameters": [{"fullTypeName": "float"}]}}
  ],
  "connections": {
    "inputOutputConnections": [
      {"fromId": "v", "fromName": "*", "fromIndex": -1, "toId": "add", "toName": "A", "toIndex": -1},
      {"fromId": "v", "fromName": "*", "fromIndex": -1, "toId": "add", "toName": "B", "toIndex": -1}
    ]
  }
}`

const danglingJSON = `{
  "version": 1,
  "nodes": [{"id": "a", "type": {"fullTypeName": "Flux.Flow.OnStart"}}],
  "connections": {
    "impulseOperationConnections": [
      {"fromId": "a", "fromName": "OnStart", "fromIndex": -1, "toId": "ghost", "toName": "*", "toIndex": -1}
    ]
  }
}`

// env is an isolated CLI setup: a config file pointing at a temp store and a
// temp artifact cache.
type env struct {
	t      *testing.T
	dir    string
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	cfg := filepath.Join(dir, "splice.toml")
	text := "[store]\nbackend = \"file\"\ndir = " + quote(filepath.Join(dir, "store")) + "\n"
	if err := os.WriteFile(cfg, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return &env{t: t, dir: dir, config: cfg}
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (e *env) file(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatal(err)
	}
	return path
}

// run executes the root command and returns stdout and stderr.
func (e *env) run(args ...string) (string, string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.In = strings.NewReader(addJSON)
	root := c.RootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestValidateCommand(t *testing.T) {
	e := newEnv(t)
	good := e.file("adder.json", addJSON)
	bad := e.file("dangling.json", danglingJSON)

	out, _, err := e.run("validate", good)
	if err != nil {
		t.Fatalf("validate(good) error: %v", err)
	}
	if !strings.Contains(out, good) {
		t.Errorf("validate output %q missing file name", out)
	}

	out, _, err = e.run("validate", good, bad)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("validate(good, bad) error = %v, want INVALID_INPUT", err)
	}
	if !strings.Contains(out, `unknown target node "ghost"`) {
		t.Errorf("validate output %q missing issue", out)
	}

	out, _, _ = e.run("validate", "--json", bad, filepath.Join(e.dir, "missing.json"))
	var results []validateResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode --json output: %v\n%s", err, out)
	}
	if len(results) != 2 || results[0].Valid || len(results[0].Issues) != 1 || results[1].Error == "" {
		t.Errorf("validate --json = %+v", results)
	}
}

func TestValidateStdin(t *testing.T) {
	e := newEnv(t)
	if _, _, err := e.run("validate", "-"); err != nil {
		t.Errorf("validate - error: %v", err)
	}
}

func TestInspectCommand(t *testing.T) {
	e := newEnv(t)
	out, _, err := e.run("inspect", e.file("adder.json", addJSON))
	if err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	for _, want := range []string{"adder", "Node types", "Add<float>", "ValueInput<float>", "layers"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q\n%s", want, out)
		}
	}
}

func TestCompileCommand(t *testing.T) {
	e := newEnv(t)
	path := e.file("adder.json", addJSON)

	out, _, err := e.run("compile", "--json", "--mode", "space", path)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	var rec interchange.ReportRecord
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if rec.Nodes != 2 || rec.EdgesWired != 2 || len(rec.Diagnostics) != 0 {
		t.Errorf("report = %+v, want 2 nodes, 2 edges, no diagnostics", rec)
	}

	out, _, err = e.run("compile", "--tree", path)
	if err != nil {
		t.Fatalf("compile --tree error: %v", err)
	}
	for _, want := range []string{"World", "  Graph", "Flux.Math.Add<float>"} {
		if !strings.Contains(out, want) {
			t.Errorf("compile --tree output missing %q\n%s", want, out)
		}
	}

	if _, _, err := e.run("compile", "--mode", "fast", path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("compile --mode fast error = %v, want INVALID_INPUT", err)
	}
}

func TestCompileConfigDefaults(t *testing.T) {
	e := newEnv(t)
	text := "[compile]\nmode = \"tagged\"\n[store]\ndir = " + quote(filepath.Join(e.dir, "store")) + "\n"
	if err := os.WriteFile(e.config, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := e.run("compile", e.file("adder.json", addJSON))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if !strings.Contains(out, "tagged mode") {
		t.Errorf("compile output %q, want tagged mode from config", out)
	}

	out, _, err = e.run("compile", "--mode", "direct", e.file("adder.json", addJSON))
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	if !strings.Contains(out, "direct mode") {
		t.Errorf("compile output %q, want flag to override config", out)
	}
}

func TestRoundtripCommand(t *testing.T) {
	e := newEnv(t)
	target := filepath.Join(e.dir, "out.json")

	_, stderr, err := e.run("roundtrip", "--ids", "r", "-o", target, e.file("adder.json", addJSON))
	if err != nil {
		t.Fatalf("roundtrip error: %v", err)
	}
	if !strings.Contains(stderr, target) {
		t.Errorf("roundtrip stderr %q missing output path", stderr)
	}

	doc, err := graphdoc.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Connections.Data) != 2 {
		t.Errorf("roundtrip document has %d nodes and %d data edges, want 2 and 2", len(doc.Nodes), len(doc.Connections.Data))
	}
	for _, n := range doc.Nodes {
		if !strings.HasPrefix(n.ID, "r") {
			t.Errorf("node id %q lacks prefix r", n.ID)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	e := newEnv(t)
	path := e.file("adder.json", addJSON)

	out, _, err := e.run("render", "-f", "dot", "--direction", "tb", "-o", "-", path)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, "digraph") || !strings.Contains(out, "rankdir=TB;") {
		t.Errorf("render output is not dot:\n%s", out)
	}

	_, stderr, err := e.run("render", "-f", "dot", "--direction", "TB", path)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.dir, "adder.dot")); err != nil {
		t.Errorf("render did not write adder.dot: %v", err)
	}
	if !strings.Contains(stderr, iconCached) {
		t.Errorf("second render stderr %q, want cached", stderr)
	}

	if _, _, err := e.run("render", "-f", "gif", path); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("render -f gif error = %v, want INVALID_INPUT", err)
	}
}

func TestCastCommand(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		name string
		args []string
		want string
		code errors.Code
	}{
		{"explicit", []string{"int", "float"}, "Flux.Casts.Cast_int_To_float", ""},
		{"assignable", []string{"Flux.World.Slot", "Flux.World.IWorldElement"}, "directly", ""},
		{"unknown", []string{"Nope", "float"}, "", errors.ErrCodeTypeResolution},
		{"impossible", []string{"Flux.World.Slot", "int"}, "", errors.ErrCodeConversion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := e.run(append([]string{"cast"}, tt.args...)...)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Errorf("cast error = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("cast error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("cast output %q missing %q", out, tt.want)
			}
		})
	}
}

func TestStoreCommands(t *testing.T) {
	e := newEnv(t)
	path := e.file("adder.json", addJSON)

	if _, _, err := e.run("store", "push", path); err != nil {
		t.Fatalf("store push error: %v", err)
	}
	if _, _, err := e.run("store", "push", "--name", "copy", "store:adder"); err != nil {
		t.Fatalf("store push store:adder error: %v", err)
	}
	if _, _, err := e.run("store", "push", e.file("dangling.json", danglingJSON)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("store push dangling error = %v, want INVALID_INPUT", err)
	}

	out, _, err := e.run("store", "list", "--json")
	if err != nil {
		t.Fatalf("store list error: %v", err)
	}
	var names []string
	if err := json.Unmarshal([]byte(out), &names); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if strings.Join(names, ",") != "adder,copy" {
		t.Errorf("store list = %v, want [adder copy]", names)
	}

	out, _, err = e.run("store", "list", "-l")
	if err != nil || !strings.Contains(out, "2 nodes, 2 connections") {
		t.Errorf("store list -l = %q, %v", out, err)
	}

	out, _, err = e.run("compile", "store:copy")
	if err != nil || !strings.Contains(out, "2/2") {
		t.Errorf("compile store:copy = %q, %v", out, err)
	}

	out, _, err = e.run("store", "pull", "adder")
	if err != nil {
		t.Fatalf("store pull error: %v", err)
	}
	if doc, err := graphdoc.Unmarshal([]byte(out)); err != nil || len(doc.Nodes) != 2 {
		t.Errorf("store pull output did not decode to 2 nodes: %v", err)
	}

	if _, _, err := e.run("store", "rm", "adder", "copy"); err != nil {
		t.Fatalf("store rm error: %v", err)
	}
	if _, _, err := e.run("store", "pull", "adder"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("store pull after rm error = %v, want NOT_FOUND", err)
	}
}

func TestCacheCommands(t *testing.T) {
	e := newEnv(t)
	if _, _, err := e.run("render", "-f", "dot", e.file("adder.json", addJSON)); err != nil {
		t.Fatalf("render error: %v", err)
	}

	out, _, err := e.run("cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(e.dir, "cache", appName, "artifacts")
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}

	out, _, err = e.run("cache", "clear")
	if err != nil || !strings.Contains(out, "Cleared 1") {
		t.Errorf("cache clear = %q, %v", out, err)
	}
	out, _, _ = e.run("cache", "clear")
	if !strings.Contains(out, "empty") {
		t.Errorf("second cache clear = %q, want empty", out)
	}
}

func TestDocumentName(t *testing.T) {
	tests := []struct {
		arg, want string
	}{
		{"graphs/adder.json", "adder"},
		{"adder.flux.json", "adder"},
		{"store:team", "team"},
		{"-", "stdin"},
		{"plain", "plain"},
		{"https://example.com/graphs/adder.json?rev=2", "adder"},
	}
	for _, tt := range tests {
		if got := documentName(tt.arg); got != tt.want {
			t.Errorf("documentName(%q) = %q, want %q", tt.arg, got, tt.want)
		}
	}
}

func TestDocumentListModel(t *testing.T) {
	m := NewDocumentListModel([]DocumentEntry{
		{Name: "alpha", Nodes: 2},
		{Name: "broken", Err: "decode document"},
		{Name: "gamma", Nodes: 5, Issues: 1},
	})

	step := func(key string) {
		var msg tea.KeyMsg
		switch key {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		}
		next, _ := m.Update(msg)
		m = next.(DocumentListModel)
	}

	step("up")
	if m.Cursor != 0 {
		t.Errorf("Cursor after up at top = %d, want 0", m.Cursor)
	}
	step("down")
	step("enter")
	if m.Selected != "" {
		t.Errorf("Selected unreadable entry %q", m.Selected)
	}
	step("down")
	step("down")
	if m.Cursor != 2 {
		t.Errorf("Cursor past end = %d, want 2", m.Cursor)
	}
	step("enter")
	if m.Selected != "gamma" {
		t.Errorf("Selected = %q, want gamma", m.Selected)
	}

	view := m.View()
	for _, want := range []string{"alpha", "unreadable", "1 issues", "[3/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
