package schemaref

import (
	"errors"
	"strings"

	"github.com/reoring/schemaref/document"
	"github.com/reoring/schemaref/i18n"
	"github.com/reoring/schemaref/jsonpointer"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeResource       = "resource_error"
	CodeLookup         = "lookup_error"
	CodeInvalidPointer = "invalid_pointer"
	CodeConsistency    = "consistency_error"
)

// Sentinels matched by errors.Is against any *Error of the same code.
var (
	ErrResource       = errors.New(CodeResource)
	ErrLookup         = errors.New(CodeLookup)
	ErrInvalidPointer = errors.New(CodeInvalidPointer)
	ErrConsistency    = errors.New(CodeConsistency)

	// ErrRegistrySealed is the cause of the consistency error RegisterForScheme
	// returns after resolution began.
	ErrRegistrySealed = errors.New("registry sealed")
)

// Error is the single error type surfaced by loaders, the registry and Context.
type Error struct {
	Code    string // One of the codes listed above.
	URI     string // Location or reference being resolved.
	Pointer string // JSON Pointer fragment, when one was involved.
	Reason  string // Optional i18n key refining Code (for example "unregistered_scheme").
	Message string // Optional free-form detail.
	Cause   error  // Optional: underlying error.
}

func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if e.URI != "" {
		b.WriteString(" at ")
		b.WriteString(e.URI)
	}
	b.WriteString(": ")
	key := e.Reason
	if key == "" {
		key = e.Code
	}
	var data map[string]string
	if e.Message != "" {
		data = map[string]string{"detail": e.Message}
	}
	b.WriteString(i18n.T(key, data))
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches the code sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrResource:
		return e.Code == CodeResource
	case ErrLookup:
		return e.Code == CodeLookup
	case ErrInvalidPointer:
		return e.Code == CodeInvalidPointer
	case ErrConsistency:
		return e.Code == CodeConsistency
	}
	return false
}

// AsError extracts *Error from an error using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	e, ok := AsError(err)
	return ok && e.Code == code
}

func resourceError(location string, cause error) *Error {
	return &Error{Code: CodeResource, URI: location, Cause: cause}
}

// pointerError maps jsonpointer failures onto the taxonomy.
func pointerError(uri, ptr string, err error) *Error {
	code := CodeLookup
	if errors.Is(err, jsonpointer.ErrInvalidIndex) {
		code = CodeInvalidPointer
	}
	return &Error{Code: code, URI: uri, Pointer: ptr, Cause: err}
}

// decodeError wraps a document decoding failure as a resource error.
func decodeError(location string, err error) *Error {
	var de *document.Error
	if errors.As(err, &de) {
		return &Error{Code: CodeResource, URI: location, Pointer: de.Path, Cause: err}
	}
	return resourceError(location, err)
}
