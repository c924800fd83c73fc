// Package errors carries the failure taxonomy shared by the exporter, the
// importer, the CLI and the HTTP API.
//
// Every failure is an [*Error] holding a [Code]. Codes fall into kinds (see
// [Kind]): a document failure aborts an import before anything is mutated,
// while an item failure skips one node, slot or edge and is recorded as a
// diagnostic so the rest of the graph still builds.
//
//	DOCUMENT_PARSE     malformed or unreadable document
//	TYPE_RESOLUTION    unknown or unconstructable type
//	PORT_RESOLUTION    named port or list index not found
//	IMPORT_RESOLUTION  import index out of range or missing collection
//	CONVERSION         no adapter between two port types
//
// Callers branch on codes rather than on message text:
//
//	if errors.Is(err, errors.ErrCodeTypeResolution) {
//		// skip the node
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code. It is also the "code" field of
// API error bodies.
type Code string

const (
	ErrCodeDocumentParse Code = "DOCUMENT_PARSE"

	ErrCodeTypeResolution   Code = "TYPE_RESOLUTION"
	ErrCodePortResolution   Code = "PORT_RESOLUTION"
	ErrCodeImportResolution Code = "IMPORT_RESOLUTION"
	ErrCodeConversion       Code = "CONVERSION"

	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidName  Code = "INVALID_NAME"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Kind groups codes by how a caller recovers from them.
type Kind int

const (
	KindInternal Kind = iota
	// KindDocument aborts the whole operation.
	KindDocument
	// KindItem skips one element of a graph.
	KindItem
	// KindInput rejects a caller-supplied argument.
	KindInput
	// KindLookup means a named resource does not exist.
	KindLookup
)

var kinds = map[Code]Kind{
	ErrCodeDocumentParse:    KindDocument,
	ErrCodeTypeResolution:   KindItem,
	ErrCodePortResolution:   KindItem,
	ErrCodeImportResolution: KindItem,
	ErrCodeConversion:       KindItem,
	ErrCodeInvalidInput:     KindInput,
	ErrCodeInvalidName:      KindInput,
	ErrCodeInvalidPath:      KindInput,
	ErrCodeNotFound:         KindLookup,
	ErrCodeFileNotFound:     KindLookup,
}

// Kind returns the kind of c. Unknown codes are internal.
func (c Code) Kind() Kind { return kinds[c] }

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with an underlying cause, which stays reachable through
// errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether the first [*Error] in err's chain has code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first [*Error] in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the first [*Error] in err's chain
// without its code, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsFatal reports whether err aborts a whole import rather than one item.
func IsFatal(err error) bool {
	return GetCode(err).Kind() == KindDocument
}

// ExitStatus maps err to a process exit status: 0 for nil, 2 for bad
// documents or arguments, 3 for missing resources and 1 otherwise.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	switch GetCode(err).Kind() {
	case KindDocument, KindInput:
		return 2
	case KindLookup:
		return 3
	}
	return 1
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
