package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/splice/pkg/errors"
	"github.com/matzehuels/splice/pkg/graphdoc"
)

// FileExt is the suffix of stored document files.
const FileExt = ".flux.json"

// FileStore stores documents as files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file store in dir. The directory will be created if
// it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := errors.ValidatePath(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+FileExt)
}

// Get reads the document stored under name.
func (s *FileStore) Get(ctx context.Context, name string) (*graphdoc.Document, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", name)
	}
	return graphdoc.Unmarshal(data)
}

// Put writes doc to a temporary file and renames it into place, so readers
// never see a partial document.
func (s *FileStore) Put(ctx context.Context, name string, doc *graphdoc.Document) error {
	data, err := encode(name, doc)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
	}
	return nil
}

// Delete removes the file for name.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if err == nil || os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "delete %s", name)
}

// List returns the names of the document files in the directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list %s", s.dir)
	}
	names := []string{}
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !strings.HasSuffix(n, FileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(n, FileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Close does nothing for file stores.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
