package schemaref

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/reoring/schemaref/document"
)

const defaultAccept = "application/schema+json, application/json;q=0.9, application/yaml;q=0.5, */*;q=0.1"

// HTTPLoader fetches http and https locations with GET. Bodies are decoded as
// YAML when the response Content-Type says so and as JSON otherwise.
type HTTPLoader struct {
	client    *http.Client
	userAgent string
	decode    document.Options
}

// NewHTTPLoader returns a loader using client, or http.DefaultClient when nil.
// Timeouts are the client's business; this layer defines none.
func NewHTTPLoader(client *http.Client, userAgent string, opt document.Options) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPLoader{client: client, userAgent: userAgent, decode: opt}
}

func (l *HTTPLoader) LoadResource(ctx context.Context, location string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, resourceError(location, err)
	}
	req.Header.Set("Accept", defaultAccept)
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, resourceError(location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &Error{Code: CodeResource, URI: location, Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}
	doc, err := document.Decode(resp.Body, document.FormatFromContentType(resp.Header.Get("Content-Type")), l.decode)
	if err != nil {
		return nil, decodeError(location, err)
	}
	return doc, nil
}
