package httputil

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/splice/pkg/errors"
)

const docJSON = `{"version": 1, "nodes": [{"id": "a", "type": {"fullTypeName": "Flux.Flow.OnStart"}}]}`

func TestRetry(t *testing.T) {
	transient := stderrors.New("transient")
	permanent := stderrors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{"succeeds first", 0, nil, 3, 1, nil},
		{"recovers", 2, &RetryableError{Err: transient}, 3, 3, nil},
		{"exhausted", 5, &RetryableError{Err: transient}, 3, 3, transient},
		{"permanent", 5, permanent, 3, 1, permanent},
		{"zero attempts runs once", 5, &RetryableError{Err: transient}, 0, 1, transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if err != tt.wantErr {
				t.Errorf("Retry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: stderrors.New("down")}
	})
	if err != context.Canceled {
		t.Errorf("Retry() error = %v, want context.Canceled", err)
	}
}

func TestFetch(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		switch r.URL.Path {
		case "/flaky.json":
			if n == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(docJSON))
		case "/doc.json":
			if !strings.HasPrefix(r.Header.Get("User-Agent"), "splice/") {
				t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
			}
			w.Write([]byte(docJSON))
		case "/broken.json":
			w.Write([]byte("{"))
		case "/forbidden.json":
			w.WriteHeader(http.StatusForbidden)
		case "/down.json":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &Fetcher{Client: srv.Client(), Delay: time.Millisecond}
	ctx := context.Background()

	doc, err := f.Fetch(ctx, srv.URL+"/doc.json")
	if err != nil {
		t.Fatalf("Fetch(doc) error: %v", err)
	}
	if len(doc.Nodes) != 1 || doc.Nodes[0].ID != "a" {
		t.Errorf("Fetch(doc) nodes = %+v", doc.Nodes)
	}

	calls.Store(0)
	if _, err := f.Fetch(ctx, srv.URL+"/flaky.json"); err != nil {
		t.Errorf("Fetch(flaky) error: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("Fetch(flaky) requests = %d, want 2", got)
	}

	tests := []struct {
		path string
		code errors.Code
	}{
		{"/missing.json", errors.ErrCodeNotFound},
		{"/forbidden.json", errors.ErrCodeInvalidInput},
		{"/broken.json", errors.ErrCodeDocumentParse},
		{"/down.json", errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		if _, err := f.Fetch(ctx, srv.URL+tt.path); !errors.Is(err, tt.code) {
			t.Errorf("Fetch(%s) error = %v, want %s", tt.path, err, tt.code)
		}
	}
}

func TestFetchMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(docJSON))
	}))
	defer srv.Close()

	f := &Fetcher{Client: srv.Client(), MaxBytes: 10}
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, errors.ErrCodeDocumentParse) {
		t.Errorf("Fetch() error = %v, want DOCUMENT_PARSE", err)
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/a.json", true},
		{"http://localhost:8080/documents/a", true},
		{"graphs/a.json", false},
		{"store:a", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.in); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
