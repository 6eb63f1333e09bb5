package schemaref

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/reoring/schemaref/document"
	"github.com/reoring/schemaref/internal/uri"
)

// FileLoader reads local file: URIs. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON.
type FileLoader struct {
	decode document.Options
	goos   string
}

// NewFileLoader returns a FileLoader using opt for decoding.
func NewFileLoader(opt document.Options) *FileLoader {
	return &FileLoader{decode: opt, goos: runtime.GOOS}
}

func (l *FileLoader) LoadResource(_ context.Context, location string) (any, error) {
	p := uri.Split(location)
	if p.Authority != "" {
		return nil, &Error{Code: CodeResource, URI: location, Reason: "network_path"}
	}
	decoded, err := url.PathUnescape(p.Path)
	if err != nil {
		return nil, resourceError(location, err)
	}
	fsPath := filepath.FromSlash(localPath(decoded, l.goos))
	f, err := os.Open(fsPath)
	if err != nil {
		return nil, resourceError(location, err)
	}
	defer f.Close()
	doc, err := document.Decode(f, document.FormatFromPath(fsPath), l.decode)
	if err != nil {
		return nil, decodeError(location, err)
	}
	return doc, nil
}

// localPath converts the path component of a file: URI to a local path.
// On Windows "/C:/dir/x.json" names drive C, and the leading '/' must go;
// POSIX paths are already absolute and are kept as they are.
func localPath(p, goos string) string {
	if goos == "windows" && len(p) >= 3 && p[0] == '/' && isDriveLetter(p[1]) && p[2] == ':' {
		return p[1:]
	}
	return p
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// FileURI converts a local path into an absolute file: URI.
func FileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if len(p) > 0 && p[0] != '/' {
		p = "/" + p
	}
	return uri.Compose("file", "", (&url.URL{Path: p}).EscapedPath()), nil
}
