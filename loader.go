package schemaref

import (
	"context"

	"github.com/reoring/schemaref/internal/uri"
)

// Loader fetches the raw document stored at a fragment-free location.
// Implementations return *Error with CodeResource when the resource is
// unreachable or cannot be decoded.
type Loader interface {
	LoadResource(ctx context.Context, location string) (any, error)
}

// LoaderFunc adapts a function to Loader. Function values are not comparable,
// so every registration of a LoaderFunc gets its own cache identity.
type LoaderFunc func(ctx context.Context, location string) (any, error)

func (f LoaderFunc) LoadResource(ctx context.Context, location string) (any, error) {
	return f(ctx, location)
}

// DocumentLoader serves one in-memory document bound to exactly one location.
// Requests for any other location fail, so an unscoped self-reference can never
// fall through to an unrelated local file.
type DocumentLoader struct {
	location string
	document any
}

// NewDocumentLoader binds doc to location. The fragment of location is
// ignored: "root#" and "root" name the same resource.
func NewDocumentLoader(doc any, location string) *DocumentLoader {
	return &DocumentLoader{location: uri.StripFragment(location), document: doc}
}

// Location returns the bound, fragment-free location.
func (l *DocumentLoader) Location() string { return l.location }

func (l *DocumentLoader) LoadResource(_ context.Context, location string) (any, error) {
	if uri.StripFragment(location) != l.location {
		return nil, &Error{Code: CodeResource, URI: location, Message: "cannot retrieve external documents; bound to " + quoteLocation(l.location)}
	}
	return l.document, nil
}

func quoteLocation(s string) string {
	if s == "" {
		return `""`
	}
	return s
}
