package grammar

import (
	"errors"
	"fmt"
)

// Errors returned by descriptor decoding and sources.
var (
	// ErrUnknownGrammar indicates a source has no grammar with the requested name.
	ErrUnknownGrammar = errors.New("unknown grammar")

	// ErrUnsupportedEncoding indicates the descriptor encoding is not YAML or TOML.
	ErrUnsupportedEncoding = errors.New("unsupported grammar encoding")

	// ErrMissingName indicates a descriptor without a grammar name.
	ErrMissingName = errors.New("grammar name missing")
)

// ParseError represents an error while decoding a descriptor.
type ParseError struct {
	// Path is the file path (or pseudo path) that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
