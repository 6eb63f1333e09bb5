package schemaref

import (
	"os"

	"github.com/reoring/schemaref/document"
)

// NewResolutionContext builds a session for doc and returns its root Context.
// The registry binds http and https to one HTTPLoader, file to a FileLoader,
// scheme-less references to a DocumentLoader serving doc at location, and s3
// when WithS3Client was given. The root scope is location, or RootScope when
// location is empty.
func NewResolutionContext(doc any, location string, opts ...Option) Context {
	o := buildOptions(opts)
	r := newRegistry(o)

	httpLoader := NewHTTPLoader(o.HTTPClient, o.UserAgent, o.Decode)
	mustRegister(r, "http", httpLoader)
	mustRegister(r, "https", httpLoader)
	mustRegister(r, "file", NewFileLoader(o.Decode))
	mustRegister(r, NoScheme, NewDocumentLoader(doc, location))
	if o.S3Client != nil {
		mustRegister(r, "s3", NewS3Loader(o.S3Client, o.Decode))
	}
	return NewContext(location, r)
}

// mustRegister is used on registries that cannot be sealed yet.
func mustRegister(r *Registry, scheme string, l Loader) {
	if err := r.RegisterForScheme(scheme, l); err != nil {
		panic(err)
	}
}

// OpenFile decodes the schema at path and returns it together with a root
// Context located at the file's file: URI.
func OpenFile(path string, opts ...Option) (Context, any, error) {
	o := buildOptions(opts)
	loc, err := FileURI(path)
	if err != nil {
		return Context{}, nil, resourceError(path, err)
	}
	f, err := os.Open(path)
	if err != nil {
		return Context{}, nil, resourceError(loc, err)
	}
	defer f.Close()
	doc, err := document.Decode(f, document.FormatFromPath(path), o.Decode)
	if err != nil {
		return Context{}, nil, decodeError(loc, err)
	}
	return NewResolutionContext(doc, loc, opts...), doc, nil
}
