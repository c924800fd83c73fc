package store

import (
	"context"
	"time"

	"github.com/matzehuels/splice/pkg/graphdoc"
	"github.com/matzehuels/splice/pkg/observability"
)

// Observe wraps s so every call is reported to the store hooks under the
// given backend name.
func Observe(s Store, backend string) Store {
	return &observed{Store: s, backend: backend}
}

type observed struct {
	Store
	backend string
}

func (o *observed) report(ctx context.Context, op string, start time.Time, err error) {
	observability.Store().OnStoreOp(ctx, o.backend, op, time.Since(start), err)
}

func (o *observed) Get(ctx context.Context, name string) (*graphdoc.Document, error) {
	start := time.Now()
	doc, err := o.Store.Get(ctx, name)
	o.report(ctx, "get", start, err)
	return doc, err
}

func (o *observed) Put(ctx context.Context, name string, doc *graphdoc.Document) error {
	start := time.Now()
	err := o.Store.Put(ctx, name, doc)
	o.report(ctx, "put", start, err)
	return err
}

func (o *observed) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := o.Store.Delete(ctx, name)
	o.report(ctx, "delete", start, err)
	return err
}

func (o *observed) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := o.Store.List(ctx)
	o.report(ctx, "list", start, err)
	return names, err
}
