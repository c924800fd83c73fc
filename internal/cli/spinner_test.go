package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner(t *testing.T) {
	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Rendering")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !strings.Contains(out.String(), "Rendering") {
		t.Errorf("spinner output %q missing message", out.String())
	}
	if !s.Canceled() {
		t.Error("Canceled() = false after Stop, want true")
	}
}

func TestSpinnerContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out syncBuffer
	s := newSpinner(ctx, &out, "Waiting")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Canceled() {
		t.Error("Canceled() = false after context timeout, want true")
	}
	s.Stop()
}

func TestSpinnerStopIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Stopping")
	s.Start()
	s.Stop()
	s.Stop()
}
