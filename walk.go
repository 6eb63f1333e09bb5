package schemaref

import (
	"context"
	"errors"
	"sort"

	"github.com/reoring/schemaref/document"
	"github.com/reoring/schemaref/internal/uri"
	"github.com/reoring/schemaref/jsonpointer"
)

// ErrStopWalk may be returned by a WalkRefs callback to end the walk early
// without reporting an error.
var ErrStopWalk = errors.New("stop walk")

// member reads key from a schema object of either representation.
func member(node any, key string) (any, bool) {
	switch t := node.(type) {
	case *document.Object:
		return t.Get(key)
	case map[string]any:
		v, ok := t[key]
		return v, ok
	}
	return nil, false
}

func stringMember(node any, key string) (string, bool) {
	v, ok := member(node, key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Enter returns the Context in effect inside node: the current one, rescoped
// by the node's "$id" (or Draft-4 "id") when present.
func (c Context) Enter(node any) Context {
	if id, ok := stringMember(node, "$id"); ok {
		return c.FollowURI(id)
	}
	if id, ok := stringMember(node, "id"); ok {
		return c.FollowURI(id)
	}
	return c
}

// Resolve enters node and follows "$ref" until it reaches a node without one.
// Each hop is joined against the scope of the previous target, so a chain
// that crosses documents keeps resolving relative to the document it is in.
// The returned Context is the scope of the final node. A chain that revisits
// a target fails with CodeConsistency.
func (c Context) Resolve(ctx context.Context, node any) (Context, any, error) {
	cur := c.Enter(node)
	seen := map[string]bool{}
	for {
		ref, ok := stringMember(node, "$ref")
		if !ok {
			return cur, node, nil
		}
		target := uri.Join(cur.scope, ref)
		if seen[target] {
			return cur, nil, &Error{Code: CodeConsistency, URI: target, Reason: "ref_cycle"}
		}
		seen[target] = true
		next, err := cur.Dereference(ctx, ref)
		if err != nil {
			return cur, nil, err
		}
		node = next
		cur = cur.FollowURI(ref).Enter(node)
	}
}

// RefVisit describes one "$ref" met by WalkRefs.
type RefVisit struct {
	Pointer string // location of the referencing object in the walked document
	Scope   string // base URI in effect at that object
	Ref     string // the "$ref" value as written
	Target  string // Ref joined against Scope
	Value   any    // dereferenced value; nil when Err is set
	Err     error
}

// WalkRefs traverses node depth-first, applying "id"/"$id" scoping, and
// dereferences every "$ref" it finds. Members of an object holding "$ref" are
// not descended into. Keys of plain maps are visited in sorted order; ordered
// objects are visited in document order. The walk stops at the first non-nil
// error returned by fn; ErrStopWalk stops it silently.
func (c Context) WalkRefs(ctx context.Context, node any, fn func(RefVisit) error) error {
	err := c.walk(ctx, node, jsonpointer.Pointer{}, fn)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func (c Context) walk(ctx context.Context, node any, at jsonpointer.Pointer, fn func(RefVisit) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch t := node.(type) {
	case *document.Object, map[string]any:
		inner := c.Enter(t)
		if ref, ok := stringMember(t, "$ref"); ok {
			v, err := inner.Dereference(ctx, ref)
			return fn(RefVisit{
				Pointer: at.String(),
				Scope:   inner.scope,
				Ref:     ref,
				Target:  uri.Join(inner.scope, ref),
				Value:   v,
				Err:     err,
			})
		}
		var err error
		rangeMembers(t, func(k string, v any) bool {
			err = inner.walk(ctx, v, at.Field(k), fn)
			return err == nil
		})
		if err != nil {
			return err
		}
	case []any:
		for i, v := range t {
			if err := c.walk(ctx, v, at.Index(i), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// rangeMembers visits ordered objects in document order and plain maps in
// sorted key order, stopping when fn returns false.
func rangeMembers(node any, fn func(key string, v any) bool) {
	switch t := node.(type) {
	case *document.Object:
		t.Range(fn)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !fn(k, t[k]) {
				return
			}
		}
	}
}
