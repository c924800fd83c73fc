package graphdoc

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/splice/pkg/errors"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// Marshal encodes a document as indented JSON.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a document from JSON bytes.
// Failures carry [errors.ErrCodeDocumentParse].
func Unmarshal(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes d as indented JSON to w.
func Write(d *Document, w io.Writer) error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil document")
	}
	d.normalize()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return nil
}

// Read decodes one document from r. Keys match case-insensitively, so
// documents written with PascalCase keys load as well. Missing fields take
// their defaults: version 1, empty arrays, list indices -1.
//
// Read does not close r.
func Read(r io.Reader) (*Document, error) {
	dec := json.NewDecoder(r)
	var d Document
	if err := dec.Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDocumentParse, err, "decode document")
	}
	if d.Version < 1 {
		return nil, errors.New(errors.ErrCodeDocumentParse, "unsupported document version %d", d.Version)
	}
	return &d, nil
}

// WriteFile writes d to path, replacing any existing file.
func WriteFile(d *Document, path string) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return Write(d, f)
}

// ReadFile reads the document stored at path.
func ReadFile(path string) (*Document, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeDocumentParse, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
