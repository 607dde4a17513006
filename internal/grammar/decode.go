package grammar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Encoding identifies the serialization of a descriptor.
type Encoding uint8

// Supported encodings.
const (
	EncodingUnknown Encoding = iota
	EncodingYAML
	EncodingTOML
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingYAML:
		return "yaml"
	case EncodingTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// EncodingForPath picks the encoding from a file extension.
func EncodingForPath(path string) Encoding {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML
	case ".toml":
		return EncodingTOML
	default:
		return EncodingUnknown
	}
}

// Decode parses a descriptor from data.
func Decode(enc Encoding, data []byte) (*Grammar, error) {
	return decode("<data>", enc, data)
}

// DecodeReader reads and parses a descriptor from r.
func DecodeReader(enc Encoding, r io.Reader) (*Grammar, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading grammar: %w", err)
	}
	return decode("<reader>", enc, data)
}

func decode(source string, enc Encoding, data []byte) (*Grammar, error) {
	var g Grammar
	switch enc {
	case EncodingYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&g); err != nil {
			return nil, yamlParseError(source, err)
		}
	case EncodingTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&g); err != nil {
			return nil, tomlParseError(source, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", source, ErrUnsupportedEncoding)
	}

	if strings.TrimSpace(g.Name) == "" {
		return nil, &ParseError{Path: source, Message: "grammar has no name", Err: ErrMissingName}
	}
	return &g, nil
}

func tomlParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	var derr *toml.DecodeError
	var serr *toml.StrictMissingError
	switch {
	case errors.As(err, &derr):
		pe.Line, pe.Column = derr.Position()
	case errors.As(err, &serr) && len(serr.Errors) > 0:
		pe.Line, pe.Column = serr.Errors[0].Position()
	}
	return pe
}

// yamlParseError takes the position from the first "line N:" of the
// message; yaml.v3 does not expose it otherwise.
func yamlParseError(source string, err error) *ParseError {
	pe := &ParseError{Path: source, Message: err.Error(), Err: err}

	msg := err.Error()
	i := strings.Index(msg, "line ")
	if i < 0 {
		return pe
	}
	digits := msg[i+len("line "):]
	if j := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); j >= 0 {
		digits = digits[:j]
	}
	if n, convErr := strconv.Atoi(digits); convErr == nil {
		pe.Line = n
	}
	return pe
}
