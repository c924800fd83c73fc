package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/splice/pkg/cache"
	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/interchange"
	"github.com/matzehuels/splice/pkg/nodes"
	"github.com/matzehuels/splice/pkg/pipeline"
	"github.com/matzehuels/splice/pkg/store"
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

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nodes.New(), cache.NewNullCache(), logger)
	return New(st, runner, WithLogger(logger)), st
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthAndVersion(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/version", "")
	var info struct {
		DocumentVersion int `json:"documentVersion"`
	}
	decode(t, rec, &info)
	if info.DocumentVersion != graphdoc.CurrentVersion {
		t.Errorf("documentVersion = %d, want %d", info.DocumentVersion, graphdoc.CurrentVersion)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s, st := newTestServer(t)
	h := s.Handler()

	if rec := do(t, h, http.MethodPut, "/documents/adder", addJSON); rec.Code != http.StatusNoContent {
		t.Fatalf("PUT status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if _, err := st.Get(context.Background(), "adder"); err != nil {
		t.Fatalf("store.Get(adder) error: %v", err)
	}

	rec := do(t, h, http.MethodGet, "/documents", "")
	var list struct {
		Documents []string `json:"documents"`
	}
	decode(t, rec, &list)
	if len(list.Documents) != 1 || list.Documents[0] != "adder" {
		t.Errorf("documents = %v, want [adder]", list.Documents)
	}

	rec = do(t, h, http.MethodGet, "/documents/adder", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}
	doc, err := graphdoc.Unmarshal(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(doc.Nodes) != 2 || len(doc.Connections.Data) != 2 {
		t.Errorf("GET document has %d nodes and %d data edges, want 2 and 2", len(doc.Nodes), len(doc.Connections.Data))
	}

	if rec := do(t, h, http.MethodDelete, "/documents/adder", ""); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/documents/adder", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET after DELETE status = %d, want 404", rec.Code)
	}
}

func TestPutRejects(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"malformed", "/documents/x", "{", http.StatusBadRequest},
		{"bad version", "/documents/x", `{"version": 0}`, http.StatusBadRequest},
		{"dangling edge", "/documents/x", danglingJSON, http.StatusUnprocessableEntity},
		{"bad name", "/documents/..hidden", addJSON, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, tt.target, tt.body)
			if rec.Code != tt.status {
				t.Errorf("PUT status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestPutBodyLimit(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	s := New(st, pipeline.NewRunner(nodes.New(), nil, logger), WithLogger(logger), WithMaxBodyBytes(16))

	rec := do(t, s.Handler(), http.MethodPut, "/documents/big", addJSON)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("PUT status = %d, want 413", rec.Code)
	}
}

func TestValidate(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name   string
		body   string
		valid  bool
		issues int
	}{
		{"valid", addJSON, true, 0},
		{"dangling", danglingJSON, false, 1},
		{"malformed", "[", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/validate", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var got validation
			decode(t, rec, &got)
			if got.Valid != tt.valid {
				t.Errorf("valid = %v, want %v", got.Valid, tt.valid)
			}
			if len(got.Issues) != tt.issues {
				t.Errorf("issues = %v, want %d", got.Issues, tt.issues)
			}
		})
	}
}

func TestCompile(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rec := do(t, h, http.MethodPost, "/compile?mode=space&prepare=true", addJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /compile status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Report   interchange.ReportRecord `json:"report"`
		Document *graphdoc.Document       `json:"document"`
	}
	decode(t, rec, &got)
	if got.Report.Nodes != 2 || got.Report.EdgesWired != 2 {
		t.Errorf("report = %+v, want 2 nodes and 2 wired edges", got.Report)
	}
	if got.Document == nil || len(got.Document.Nodes) != 2 {
		t.Errorf("document = %+v, want 2 nodes", got.Document)
	}

	rec = do(t, h, http.MethodPost, "/compile?mode=fast", addJSON)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("POST /compile?mode=fast status = %d, want 400", rec.Code)
	}
}

func TestCompileStored(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	if rec := do(t, h, http.MethodPut, "/documents/adder", addJSON); rec.Code != http.StatusNoContent {
		t.Fatalf("PUT status = %d", rec.Code)
	}
	rec := do(t, h, http.MethodPost, "/documents/adder/compile", `{"mode": "tagged", "monopack": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST compile status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got compileResponse
	decode(t, rec, &got)
	if got.Report.NodesTotal != 2 {
		t.Errorf("nodesTotal = %d, want 2", got.Report.NodesTotal)
	}

	if rec := do(t, h, http.MethodPost, "/documents/missing/compile", ""); rec.Code != http.StatusNotFound {
		t.Errorf("POST missing compile status = %d, want 404", rec.Code)
	}
}

func TestRenderCache(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	h := New(st, pipeline.NewRunner(nodes.New(), c, logger), WithLogger(logger)).Handler()

	if rec := do(t, h, http.MethodPut, "/documents/adder", addJSON); rec.Code != http.StatusNoContent {
		t.Fatalf("PUT status = %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/documents/adder/dot?direction=tb", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET dot status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}
	if !strings.Contains(rec.Body.String(), "rankdir=TB;") {
		t.Errorf("dot output missing rankdir=TB:\n%s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q, want text/vnd.graphviz", ct)
	}

	rec = do(t, h, http.MethodGet, "/documents/adder/render?format=dot&direction=TB", "")
	if got := rec.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second render X-Cache = %q, want hit", got)
	}

	for _, target := range []string{
		"/documents/adder/render?format=gif",
		"/documents/adder/render?direction=up",
		"/documents/adder/render?format=png&scale=big",
	} {
		if rec := do(t, h, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", target, rec.Code)
		}
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeInvalidName, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeDocumentParse, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
		{errors.Wrap(errors.ErrCodeDocumentParse, &http.MaxBytesError{Limit: 1}, "decode"), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		if got := statusOf(tt.err); got != tt.want {
			t.Errorf("statusOf(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
