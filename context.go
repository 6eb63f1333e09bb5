package schemaref

import (
	"context"

	"github.com/reoring/schemaref/internal/uri"
)

// RootScope is the scope of a document that has no location of its own.
const RootScope = "#"

// Context is an immutable resolution scope: the base URI in effect at a point
// of schema traversal plus the session registry. Every method returns a new
// value, so rescoping one subtree never leaks into its siblings.
type Context struct {
	scope    string
	registry *Registry
}

// NewContext returns a Context scoped at scope. An empty scope becomes RootScope.
func NewContext(scope string, r *Registry) Context {
	if scope == "" {
		scope = RootScope
	}
	return Context{scope: scope, registry: r}
}

// Scope returns the current base URI.
func (c Context) Scope() string { return c.scope }

// Registry returns the session registry.
func (c Context) Registry() *Registry { return c.registry }

// FollowURI returns a Context whose scope is ref resolved against the current
// scope. It is applied when a schema node declares "id" or "$id".
func (c Context) FollowURI(ref string) Context {
	return Context{scope: uri.Join(c.scope, ref), registry: c.registry}
}

// Rebase returns a Context scoped at u verbatim, sharing the registry.
func (c Context) Rebase(u string) Context {
	return Context{scope: u, registry: c.registry}
}

// Dereference resolves ref against the scope and loads its target. The
// returned Context is unchanged: an "id" inside the target is the caller's to
// apply.
func (c Context) Dereference(ctx context.Context, ref string) (any, error) {
	if c.registry == nil {
		return nil, &Error{Code: CodeConsistency, URI: ref, Message: "context has no registry"}
	}
	return c.registry.LoadURI(ctx, uri.Join(c.scope, ref))
}

func (c Context) String() string { return "Context(" + c.scope + ")" }
