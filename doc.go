package schemaref

// Package schemaref resolves JSON Schema "$ref" references across documents:
//
// - Loaders fetch raw documents per URI scheme (http/https, file, an in-memory root document, s3)
// - A per-session Registry dispatches on scheme and memoizes documents in an LRU keyed by location
// - JSON Pointer fragments select values inside loaded documents (see package jsonpointer)
// - Context tracks the base URI while a schema tree is walked ("id"/"$id" rescoping)
//
// Design policy:
// - Keep only public APIs in the root package; put URI handling under internal/.
// - Document decoding lives in document/ and keeps object key order.
// - Every failure is an *Error whose Code matches ErrResource, ErrLookup, ErrInvalidPointer or ErrConsistency.
//
// Typical usage:
//
//  ctx := schemaref.NewResolutionContext(schema, "file:///schemas/root.json")
//  sub := ctx.Enter(node)                         // apply "id"/"$id"
//  v, err := sub.Dereference(reqCtx, "defs.json#/definitions/address")
//
