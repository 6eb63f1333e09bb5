// Package document decodes raw JSON and YAML resources into the JSON data model
// used by the resolver: nil, bool, json.Number (or float64), string, []any and
// *Object. Object keys are unique and keep their document order.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
)

// Format selects the decoder.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// NumberMode controls how numbers are represented.
type NumberMode int

const (
	// NumberJSONNumber keeps the literal text as json.Number (default).
	NumberJSONNumber NumberMode = iota
	// NumberFloat64 converts numbers to float64.
	NumberFloat64
)

// Options bounds decoding. Zero values disable the corresponding limit.
type Options struct {
	NumberMode NumberMode
	MaxDepth   int
	MaxBytes   int64
}

// Issue codes carried by *Error.
const (
	CodeParseError   = "parse_error"
	CodeDuplicateKey = "duplicate_key"
	CodeTooDeep      = "too_deep"
	CodeTruncated    = "truncated"
)

var (
	ErrDuplicateKey = errors.New("duplicate key")
	ErrTooDeep      = errors.New("max depth exceeded")
	ErrTooLarge     = errors.New("max bytes exceeded")
)

// Error reports a decoding failure at a JSON Pointer path.
type Error struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	p := e.Path
	if p == "" {
		p = "/"
	}
	return e.Code + " at " + p + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Decode reads all of r and decodes a single document in the given format.
func Decode(r io.Reader, f Format, opt Options) (any, error) {
	if opt.MaxBytes > 0 {
		r = io.LimitReader(r, opt.MaxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(b, f, opt)
}

// DecodeBytes decodes a single document from b.
func DecodeBytes(b []byte, f Format, opt Options) (any, error) {
	if opt.MaxBytes > 0 && int64(len(b)) > opt.MaxBytes {
		return nil, &Error{Code: CodeTruncated, Message: ErrTooLarge.Error(), Err: ErrTooLarge}
	}
	if f == FormatYAML {
		return decodeYAML(b, opt)
	}
	if !json.Valid(b) {
		return nil, syntaxError(b)
	}
	return decodeJSON(bytes.NewReader(b), opt)
}

// syntaxError reports why b is not a single well-formed JSON value.
func syntaxError(b []byte) *Error {
	var raw json.RawMessage
	err := json.Unmarshal(b, &raw)
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &Error{Code: CodeParseError, Message: fmt.Sprintf("offset %d: %s", se.Offset, se.Error()), Err: err}
	}
	return &Error{Code: CodeParseError, Message: err.Error(), Err: err}
}

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(p string) Format {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// FormatFromContentType picks YAML for yaml media types and JSON otherwise.
func FormatFromContentType(ct string) Format {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt = ct
	}
	if strings.Contains(strings.ToLower(mt), "yaml") {
		return FormatYAML
	}
	return FormatJSON
}
