// Package store keeps named graph documents.
//
// Three backends implement [Store]:
//
//   - [FileStore]: one <name>.flux.json file per document in a directory
//   - [RedisStore]: one key per document plus an index set
//   - [MongoStore]: one record per document in a collection
//
// Names are validated with [errors.ValidateDocumentName] by every backend, so
// a name that works with one backend works with all of them. A missing
// document is reported with [errors.ErrCodeNotFound].
package store

import (
	"context"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
)

// Store is a named document store. Implementations are safe for concurrent use.
type Store interface {
	// Get returns the document stored under name.
	Get(ctx context.Context, name string) (*graphdoc.Document, error)
	// Put stores doc under name, replacing any previous document.
	Put(ctx context.Context, name string, doc *graphdoc.Document) error
	// Delete removes name. Deleting a missing document is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the stored names in lexical order.
	List(ctx context.Context) ([]string, error)
	// Close releases the backend's resources.
	Close() error
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "document %q not found", name)
}

func encode(name string, doc *graphdoc.Document) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "nil document")
	}
	return graphdoc.Marshal(doc)
}
